package objects

import (
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
)

type FileInfo struct {
	Lname       string      `json:"Name" msgpack:"name"`
	Lsize       int64       `json:"Size" msgpack:"size"`
	Lmode       fs.FileMode `json:"Mode" msgpack:"mode"`
	LmodTime    time.Time   `json:"ModTime" msgpack:"modTime"`
	LaccessTime time.Time   `json:"AccessTime" msgpack:"accessTime"`
	LchangeTime time.Time   `json:"ChangeTime" msgpack:"changeTime"`
	Ldev        uint64      `json:"Dev" msgpack:"dev"`
	Lino        uint64      `json:"Ino" msgpack:"ino"`
	Luid        uint64      `json:"Uid" msgpack:"uid"`
	Lgid        uint64      `json:"Gid" msgpack:"gid"`
	Lnlink      uint16      `json:"Nlink" msgpack:"nlink"`
}

func (f FileInfo) Name() string {
	return f.Lname
}

func (f FileInfo) Size() int64 {
	return f.Lsize
}

func (f FileInfo) Mode() os.FileMode {
	return f.Lmode
}

func (f FileInfo) ModTime() time.Time {
	return f.LmodTime
}

func (f FileInfo) AccessTime() time.Time {
	return f.LaccessTime
}

func (f FileInfo) ChangeTime() time.Time {
	return f.LchangeTime
}

func (f FileInfo) Dev() uint64 {
	return f.Ldev
}

func (f FileInfo) Ino() uint64 {
	return f.Lino
}

func (f FileInfo) Uid() uint64 {
	return f.Luid
}

func (f FileInfo) Gid() uint64 {
	return f.Lgid
}

func (f FileInfo) IsDir() bool {
	return f.Lmode.IsDir()
}

func (f FileInfo) Nlink() uint16 {
	return f.Lnlink
}

func (f FileInfo) Sys() any {
	return nil
}

func (f FileInfo) HumanSize() string {
	return humanize.Bytes(uint64(f.Size()))
}

func FileInfoFromStat(stat fs.FileInfo) FileInfo {
	Ldev := uint64(0)
	Lino := uint64(0)
	Luid := uint64(0)
	Lgid := uint64(0)
	Lnlink := uint16(0)
	LaccessTime := stat.ModTime()
	LchangeTime := stat.ModTime()

	if st, ok := stat.Sys().(*syscall.Stat_t); ok {
		Ldev = uint64(st.Dev)
		Lino = uint64(st.Ino)
		Luid = uint64(st.Uid)
		Lgid = uint64(st.Gid)
		Lnlink = uint16(st.Nlink)
		LaccessTime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
		LchangeTime = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}

	return FileInfo{
		Lname:       stat.Name(),
		Lsize:       stat.Size(),
		Lmode:       stat.Mode(),
		LmodTime:    stat.ModTime(),
		LaccessTime: LaccessTime,
		LchangeTime: LchangeTime,
		Ldev:        Ldev,
		Lino:        Lino,
		Luid:        Luid,
		Lgid:        Lgid,
		Lnlink:      Lnlink,
	}
}

// Lstat returns the FileInfo of the path itself, never following a
// trailing symlink.
func Lstat(pathname string) (FileInfo, error) {
	stat, err := os.Lstat(pathname)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfoFromStat(stat), nil
}

func Stat(pathname string) (FileInfo, error) {
	stat, err := os.Stat(pathname)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfoFromStat(stat), nil
}

func (f FileInfo) Equal(fi *FileInfo) bool {
	return f.Lname == fi.Lname &&
		f.Lsize == fi.Lsize &&
		f.Lmode == fi.Lmode &&
		f.LmodTime == fi.LmodTime &&
		f.Ldev == fi.Ldev &&
		f.Lino == fi.Lino &&
		f.Luid == fi.Luid &&
		f.Lgid == fi.Lgid &&
		f.Lnlink == fi.Lnlink
}

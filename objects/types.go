package objects

import (
	"io/fs"
	"strings"
)

// File-type letters, following the conventions of find(1) and ls(1):
// b=block, c=char, d=directory, f=regular, l=symlink, p=fifo, s=socket.
// D (door), P (port) and w (whiteout) are accepted for compatibility with
// platforms that have them; they never match here.
const TypeLetters = "bcdflpsDPw"

func TypeLetter(mode fs.FileMode) byte {
	switch {
	case mode.IsDir():
		return 'd'
	case mode&fs.ModeSymlink != 0:
		return 'l'
	case mode&fs.ModeCharDevice != 0:
		return 'c'
	case mode&fs.ModeDevice != 0:
		return 'b'
	case mode&fs.ModeNamedPipe != 0:
		return 'p'
	case mode&fs.ModeSocket != 0:
		return 's'
	case mode.IsRegular():
		return 'f'
	default:
		return '?'
	}
}

// MatchType reports whether the mode's type letter belongs to the given
// letter set. An empty set matches everything.
func MatchType(letters string, mode fs.FileMode) bool {
	if letters == "" {
		return true
	}
	return strings.IndexByte(letters, TypeLetter(mode)) != -1
}

func ValidTypeLetters(letters string) bool {
	for i := 0; i < len(letters); i++ {
		if strings.IndexByte(TypeLetters, letters[i]) == -1 {
			return false
		}
	}
	return true
}

package filter

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Backup naming conventions recognized by IsBackup:
//   - emacs-style affixes: ~foo, foo~, #foo#
//   - a .bak (or the older .bcnk) extension
//   - "Copy of foo", "backup 3 of foo" and similar wordings
//   - a bare backup/copy/bak word anywhere in the stem
//   - editor date suffixes like "foo (2024-01-02 10-11-12-1234).txt"
var (
	reCopyOf     = regexp.MustCompile(`(?i)\b(backup|copy)(\s+\d+)?\s+of\b`)
	reBackupWord = regexp.MustCompile(`(?i)\b(backup|copy|bak)\b`)
	reDateSuffix = regexp.MustCompile(` \(\d{4}-\d{2}-\d{2} \d{2}-\d{2}-\d{2}-\d{4}\)$`)
)

func IsBackup(base string) bool {
	if base == "" {
		return false
	}
	if strings.IndexByte("~#", base[0]) != -1 || strings.IndexByte("~#", base[len(base)-1]) != -1 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(ext, "bak") || strings.EqualFold(ext, "bcnk") {
		return true
	}
	if reCopyOf.MatchString(stem) {
		return true
	}
	if reBackupWord.MatchString(stem) {
		return true
	}
	if reDateSuffix.MatchString(stem) {
		return true
	}
	return false
}

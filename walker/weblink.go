package walker

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Weblink pointer files: Windows .url shortcuts and macOS .webloc
// property lists. Both are small text files naming a remote target.
func isWeblink(pathname string) bool {
	lower := strings.ToLower(pathname)
	return strings.HasSuffix(lower, ".url") || strings.HasSuffix(lower, ".webloc")
}

var reWeblocString = regexp.MustCompile(`<string>(.+?)</string>`)

func weblinkTarget(pathname string) (string, error) {
	fp, err := os.Open(pathname)
	if err != nil {
		return "", err
	}
	defer fp.Close()

	if strings.HasSuffix(strings.ToLower(pathname), ".url") {
		scanner := bufio.NewScanner(fp)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if strings.HasPrefix(line, "URL=") {
				return strings.TrimPrefix(line, "URL="), nil
			}
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: no URL= entry", pathname)
	}

	scanner := bufio.NewScanner(fp)
	for scanner.Scan() {
		if m := reWeblocString.FindStringSubmatch(scanner.Text()); m != nil {
			return m[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s: no target string", pathname)
}

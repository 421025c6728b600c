package file

import (
	"os/exec"
	"strings"

	"github.com/sderose/powerwalk/classifier"
)

// Classifier shells out to file(1) for a content description.
type Classifier struct {
	command string
}

func init() {
	classifier.Register("file", func() classifier.Backend {
		return NewClassifier()
	})
}

func NewClassifier() *Classifier {
	return &Classifier{command: "file"}
}

func (c *Classifier) Describe(pathname string) (string, error) {
	out, err := exec.Command(c.command, "-b", "--", pathname).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *Classifier) Close() error {
	return nil
}

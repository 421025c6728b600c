package mime

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/sderose/powerwalk/classifier"
)

type Classifier struct {
}

func init() {
	classifier.Register("mime", func() classifier.Backend {
		return NewClassifier()
	})
}

func NewClassifier() *Classifier {
	return &Classifier{}
}

func (c *Classifier) Describe(pathname string) (string, error) {
	mtype, err := mimetype.DetectFile(pathname)
	if err != nil {
		return "", err
	}
	return mtype.String(), nil
}

func (c *Classifier) Close() error {
	return nil
}

// Package setup drives interactive configuration of quarry.
package setup

import (
	"io"
	"os"

	"github.com/quarrydata/quarry/internal/globalconfig"
	"github.com/quarrydata/quarry/internal/logger"
	"github.com/quarrydata/quarry/internal/prompter"
)

type Initiator struct {
	prompt *prompter.TextPrompter
}

func New(in io.Reader, out io.Writer) *Initiator {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Initiator{prompt: prompter.New(in, out)}
}

// Execute asks for the bucket settings and writes the persistent config.
func (i *Initiator) Execute() error {
	existing, _ := globalconfig.LoadPersistentConfig()
	def := &globalconfig.PersistentConfig{
		Region:   "us-east-1",
		CacheDir: globalconfig.DefaultCacheDir(),
	}
	if existing != nil {
		def = existing
	}

	bucket, err := i.prompt.PromptDefault("Dataset bucket", def.Bucket)
	if err != nil {
		return err
	}
	region, err := i.prompt.PromptDefault("Region", def.Region)
	if err != nil {
		return err
	}
	endpoint, err := i.prompt.PromptDefault("Custom endpoint (empty for AWS)", def.Endpoint)
	if err != nil {
		return err
	}
	cacheDir, err := i.prompt.PromptDefault("Cache directory", def.CacheDir)
	if err != nil {
		return err
	}

	cfg := &globalconfig.PersistentConfig{
		Bucket:    bucket,
		Region:    region,
		Endpoint:  endpoint,
		CacheDir:  cacheDir,
		AccessKey: def.AccessKey,
		SecretKey: def.SecretKey,
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	logger.Success("Saved configuration for bucket %s", bucket)
	return nil
}

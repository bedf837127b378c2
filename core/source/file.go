package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
	"github.com/google/uuid"
)

const filePollInterval = 1 * time.Second

// File polls a directory for files matching a glob pattern, submits each
// one's content as a message, and renames the file to "<name>.processed"
// on success so it isn't picked up again. Grounded on the reference
// FileReader.
type File struct {
	Dir          string
	Pattern      string
	ChannelID    uuid.UUID
	MessageStore store.MessageStore
}

func NewFile(dir, pattern string, channelID uuid.UUID) *File {
	if pattern == "" {
		pattern = "*"
	}
	return &File{Dir: dir, Pattern: pattern, ChannelID: channelID}
}

func (f *File) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(filePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.poll(ctx, sink)
		}
	}
}

func (f *File) poll(ctx context.Context, sink Sink) {
	matches, err := filepath.Glob(filepath.Join(f.Dir, f.Pattern))
	if err != nil {
		return
	}

	for _, path := range matches {
		if strings.HasSuffix(path, ".processed") {
			continue
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		origin := fmt.Sprintf("File: %s", filepath.Base(path))
		msg := message.New(f.ChannelID, string(content), origin)

		if err := persistIngest(ctx, f.MessageStore, msg); err != nil {
			continue
		}

		reply := sink.Submit(ctx, msg)
		if _, err := reply.Wait(ctx); err != nil {
			continue
		}

		_ = os.Rename(path, path+".processed")
	}
}

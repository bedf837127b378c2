package source

import (
	"fmt"

	"github.com/google/uuid"
)

func parseChannelID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid channel id %q: %w", s, err)
	}
	return id, nil
}

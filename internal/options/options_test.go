package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type codecConfig struct {
	lanes int
	pack  bool
}

func withLanes(n int) Option[*codecConfig] {
	return New(func(c *codecConfig) error {
		if n <= 0 {
			return errors.New("lanes must be positive")
		}
		c.lanes = n

		return nil
	})
}

func withPack(enabled bool) Option[*codecConfig] {
	return NoError(func(c *codecConfig) {
		c.pack = enabled
	})
}

func TestApply(t *testing.T) {
	t.Run("applies options in order", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withLanes(4), withPack(true), withLanes(32))
		require.NoError(t, err)
		require.Equal(t, 32, cfg.lanes)
		require.True(t, cfg.pack)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &codecConfig{}
		err := Apply(cfg, withPack(true), withLanes(0), withLanes(4))
		require.Error(t, err)
		require.Contains(t, err.Error(), "lanes must be positive")
		require.True(t, cfg.pack)
		require.Equal(t, 0, cfg.lanes)
	})

	t.Run("no options", func(t *testing.T) {
		cfg := &codecConfig{lanes: 4}
		require.NoError(t, Apply(cfg))
		require.Equal(t, 4, cfg.lanes)
	})
}

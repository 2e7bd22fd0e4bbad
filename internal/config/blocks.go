package config

import "maps"

// BlockConfig is the block rule set consumed by schedule annotation.
type BlockConfig struct {
	// RangeBlocks are in ascending local time-of-day order.
	RangeBlocks []RangeBlock
	// NameBlocks are tried in order; the first matching pattern wins.
	NameBlocks []NameBlock
	// Blocks maps block names to their display attributes.
	Blocks map[string]map[string]string
}

// FillerConfig describes the synthetic timeslots inserted into schedule gaps.
type FillerConfig struct {
	// Metadata is keyed by strand ("text", "image") then metadata key.
	Metadata map[string]map[string]string
	// Block is the block filler timeslots are tagged with; empty means none.
	Block string
}

// BlockConfig returns the block rules from the [blocks] section.
func (c *Config) BlockConfig() BlockConfig {
	blocks := make(map[string]map[string]string, len(c.Blocks.Types))
	for name, attrs := range c.Blocks.Types {
		blocks[name] = maps.Clone(attrs)
	}
	return BlockConfig{
		RangeBlocks: append([]RangeBlock(nil), c.Blocks.Range...),
		NameBlocks:  append([]NameBlock(nil), c.Blocks.Name...),
		Blocks:      blocks,
	}
}

// FillerConfig returns the filler settings from the [filler] section.
func (c *Config) FillerConfig() FillerConfig {
	metadata := map[string]map[string]string{}
	if len(c.Filler.Metadata.Text) > 0 {
		metadata["text"] = maps.Clone(c.Filler.Metadata.Text)
	}
	if len(c.Filler.Metadata.Image) > 0 {
		metadata["image"] = maps.Clone(c.Filler.Metadata.Image)
	}
	return FillerConfig{Metadata: metadata, Block: c.Filler.Block}
}

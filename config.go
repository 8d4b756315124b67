package zireael

// Config is the engine's create-time configuration (spec §4.J "create:
// validate config and version pins").
type Config struct {
	Cols, Rows int

	DrawlistLimits drawlistLimits

	EventQueueCapacity int
	PasteBufferBytes   int
	UserEventQueueDepth int

	TargetFPS int

	OutMaxBytesPerFrame int
	SGRAttrsSupported   uint32
	ColorMode           ColorMode

	EnableMouse          bool
	EnableBracketedPaste bool
	EnableFocusEvents    bool
	EnableSyncUpdate     bool
	EnableScrollRegion   bool

	WaitForOutputDrain bool

	DrawlistVersion uint32
	EventBatchVersion uint32
}

// DefaultConfig returns the configuration used when a caller supplies no
// overrides; every field is a concrete, documented default rather than a
// language zero value standing in for "unset".
func DefaultConfig() Config {
	return Config{
		Cols: 80,
		Rows: 24,

		DrawlistLimits: defaultDrawlistLimits(),

		EventQueueCapacity:  1024,
		PasteBufferBytes:    1 << 20,
		UserEventQueueDepth: 256,

		TargetFPS: 60,

		OutMaxBytesPerFrame: 1 << 20,
		SGRAttrsSupported:   uint32(AttrBold | AttrItalic | AttrUnderline | AttrReverse | AttrDim | AttrStrike),
		ColorMode:           ColorUnknown,

		EnableMouse:          false,
		EnableBracketedPaste: true,
		EnableFocusEvents:    true,
		EnableSyncUpdate:     true,
		EnableScrollRegion:   true,

		WaitForOutputDrain: false,

		DrawlistVersion:   1,
		EventBatchVersion: 1,
	}
}

// validate rejects configurations that violate a pinned invariant before
// any platform resource is touched (spec §4.J: "validate config and
// version pins").
func (c Config) validate(detected Caps) error {
	if c.Cols <= 0 || c.Rows <= 0 {
		return newErr(ErrInvalidArgument, "cols/rows must be positive")
	}
	if c.DrawlistVersion != 1 && c.DrawlistVersion != 2 {
		return newErr(ErrInvalidArgument, "unsupported drawlist version")
	}
	if c.EventBatchVersion != 1 {
		return newErr(ErrInvalidArgument, "unsupported event batch version")
	}
	if c.OutMaxBytesPerFrame <= 0 {
		return newErr(ErrInvalidArgument, "out_max_bytes_per_frame must be positive")
	}
	if c.EventQueueCapacity <= 0 || c.PasteBufferBytes <= 0 {
		return newErr(ErrInvalidArgument, "queue/paste capacities must be positive")
	}
	if c.WaitForOutputDrain && !detected.SupportsOutputWaitWritable {
		return newErr(ErrUnsupported, "wait_for_output_drain requires supports_output_wait_writable")
	}
	return nil
}

// platformSubConfigChanged reports whether next differs from c in a field
// only the platform backend can apply (spec §4.J: set_config "rejects
// platform sub-config changes").
func (c Config) platformSubConfigChanged(next Config) bool {
	return c.EnableMouse != next.EnableMouse ||
		c.EnableBracketedPaste != next.EnableBracketedPaste ||
		c.EnableFocusEvents != next.EnableFocusEvents ||
		c.EnableSyncUpdate != next.EnableSyncUpdate ||
		c.EnableScrollRegion != next.EnableScrollRegion ||
		c.WaitForOutputDrain != next.WaitForOutputDrain
}

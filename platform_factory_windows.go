//go:build windows

package zireael

func newPlatformForOS(cfg Config) (platform, error) {
	return newWindowsPlatform(cfg)
}

package platform

// Options carries per-notification extras that not every backend honors.
type Options struct {
	// IconPath names an image shown next to the banner. Backends without
	// icon support leave it unused.
	IconPath string
}

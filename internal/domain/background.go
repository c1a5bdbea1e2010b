package domain

// BackgroundKind distinguishes solid fills from bundled or user images.
type BackgroundKind int

const (
	BackgroundSolid BackgroundKind = iota
	BackgroundImage
	BackgroundCustom
)

// BackgroundOption is one entry of the background picker.
type BackgroundOption struct {
	Index int
	Name  string
	Kind  BackgroundKind
	Color string // hex, set for solid fills
	Asset string // bundled image name, or the URI for a custom image
}

// Backgrounds is the built-in catalog, indexed by SelectedBackgroundIndex.
var Backgrounds = []BackgroundOption{
	{Index: 0, Name: "Dark", Kind: BackgroundSolid, Color: "#0D0D0D"},
	{Index: 1, Name: "Purple", Kind: BackgroundSolid, Color: "#1A0A2E"},
	{Index: 2, Name: "Blue", Kind: BackgroundSolid, Color: "#0A1A2E"},
	{Index: 3, Name: "Image 1", Kind: BackgroundImage, Asset: "lofi_bg_1"},
	{Index: 4, Name: "Image 2", Kind: BackgroundImage, Asset: "lofi_bg_2"},
	{Index: 5, Name: "Image 3", Kind: BackgroundImage, Asset: "lofi_bg_3"},
	{Index: 6, Name: "Image 4", Kind: BackgroundImage, Asset: "lofi_bg_4"},
}

// ActiveBackground resolves which background the state describes. A custom
// index without a URI, or an index outside the catalog, falls back to the
// first catalog entry.
func (s TimerState) ActiveBackground() BackgroundOption {
	if s.SelectedBackgroundIndex == CustomBackgroundIndex && s.CustomBackgroundURI != "" {
		return BackgroundOption{
			Index: CustomBackgroundIndex,
			Name:  "Custom",
			Kind:  BackgroundCustom,
			Asset: s.CustomBackgroundURI,
		}
	}
	if s.SelectedBackgroundIndex >= 0 && s.SelectedBackgroundIndex < len(Backgrounds) {
		return Backgrounds[s.SelectedBackgroundIndex]
	}
	return Backgrounds[0]
}

// NextBackgroundIndex returns the catalog index after the current one,
// wrapping around. A custom background advances to the first entry.
func NextBackgroundIndex(current int) int {
	if current < 0 || current >= len(Backgrounds)-1 {
		return 0
	}
	return current + 1
}

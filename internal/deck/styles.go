package deck

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StyleRoad          = "road"
	StyleLight         = "light"
	StyleDark          = "dark"
	StyleLightNoLabels = "light_no_labels"
	StyleDarkNoLabels  = "dark_no_labels"
	StyleSatellite     = "satellite"
)

const ProviderCarto = "carto"

var ErrUnsupportedStyle = errors.New("unsupported map style")

var cartoStyles = map[string]string{
	StyleRoad:          "https://basemaps.cartocdn.com/gl/voyager-gl-style/style.json",
	StyleLight:         "https://basemaps.cartocdn.com/gl/positron-gl-style/style.json",
	StyleDark:          "https://basemaps.cartocdn.com/gl/dark-matter-gl-style/style.json",
	StyleLightNoLabels: "https://basemaps.cartocdn.com/gl/positron-nolabels-gl-style/style.json",
	StyleDarkNoLabels:  "https://basemaps.cartocdn.com/gl/dark-matter-nolabels-gl-style/style.json",
}

// ResolveMapStyle maps a named style to the provider's style URL. URLs pass
// through unchanged.
func ResolveMapStyle(provider, style string) (string, error) {
	if strings.HasPrefix(style, "https://") || strings.HasPrefix(style, "http://") || strings.HasPrefix(style, "mapbox://") {
		return style, nil
	}
	if provider != ProviderCarto {
		return "", fmt.Errorf("%w: provider %q", ErrUnsupportedStyle, provider)
	}
	url, ok := cartoStyles[strings.ToLower(style)]
	if !ok {
		return "", fmt.Errorf("%w: %q for provider %s", ErrUnsupportedStyle, style, provider)
	}
	return url, nil
}

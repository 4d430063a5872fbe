package deck

// ViewState holds the initial camera of a scene.
type ViewState struct {
	latitude  float64
	longitude float64
	zoom      float64
	pitch     float64
	bearing   float64
}

type ViewOption func(*ViewState)

func WithPitch(pitch float64) ViewOption {
	return func(v *ViewState) { v.pitch = pitch }
}

func WithBearing(bearing float64) ViewOption {
	return func(v *ViewState) { v.bearing = bearing }
}

func NewViewState(latitude, longitude, zoom float64, opts ...ViewOption) ViewState {
	v := ViewState{latitude: latitude, longitude: longitude, zoom: zoom}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

func (v ViewState) Latitude() float64  { return v.latitude }
func (v ViewState) Longitude() float64 { return v.longitude }
func (v ViewState) Zoom() float64      { return v.zoom }
func (v ViewState) Pitch() float64     { return v.pitch }
func (v ViewState) Bearing() float64   { return v.bearing }

func (v ViewState) toJSON() map[string]any {
	return map[string]any{
		"latitude":  v.latitude,
		"longitude": v.longitude,
		"zoom":      v.zoom,
		"pitch":     v.pitch,
		"bearing":   v.bearing,
	}
}

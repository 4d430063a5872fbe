package carto

const APIVersion = "v3"

// Credentials is the credentials object a CartoLayer expects.
type Credentials struct {
	APIVersion  string `json:"apiVersion"`
	APIBaseURL  string `json:"apiBaseUrl"`
	AccessToken string `json:"accessToken"`
}

// TokenSource is anything holding a CARTO access token and API base URL.
type TokenSource interface {
	AccessToken() string
	APIBaseURL() string
}

// LayerCredentials adapts an authenticated handle to layer credentials.
func LayerCredentials(src TokenSource) Credentials {
	return Credentials{
		APIVersion:  APIVersion,
		APIBaseURL:  src.APIBaseURL(),
		AccessToken: src.AccessToken(),
	}
}

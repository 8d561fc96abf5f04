// Package geocoder resolves coordinates to a "city district" label through
// the Kakao Local coord2address API. It is best-effort: every failure mode
// degrades to an empty label so onboarding never blocks on it.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// IsConfigured reports whether an API key is present. Without one,
// ReverseGeocode always returns an empty label.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type coord2AddressResponse struct {
	Documents []struct {
		Address *struct {
			Region1DepthName string `json:"region_1depth_name"`
			Region2DepthName string `json:"region_2depth_name"`
		} `json:"address"`
	} `json:"documents"`
}

// ReverseGeocode returns a label like "서울특별시 동작구", or "" when the
// coordinates cannot be resolved.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if !c.IsConfigured() {
		return "", nil
	}

	// x is longitude, y is latitude
	query := url.Values{}
	query.Set("x", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("coord2address request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("coord2address returned status %d", resp.StatusCode)
	}

	var decoded coord2AddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("coord2address response malformed: %w", err)
	}

	if len(decoded.Documents) == 0 || decoded.Documents[0].Address == nil {
		return "", nil
	}
	addr := decoded.Documents[0].Address
	if addr.Region1DepthName == "" || addr.Region2DepthName == "" {
		return "", nil
	}
	return addr.Region1DepthName + " " + addr.Region2DepthName, nil
}

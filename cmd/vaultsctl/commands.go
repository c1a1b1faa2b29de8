package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

func runSync(apiURL, tenantID string, out io.Writer) error {
	u := apiURL + "/api/ingestion/sync"
	if tenantID != "" {
		u += "?tenantId=" + url.QueryEscape(tenantID)
	}
	resp, err := http.Post(u, "application/json", nil)
	if err != nil {
		return err
	}
	return copyResponse(resp, out)
}

func runStatus(apiURL, tenantID string, out io.Writer) error {
	u := apiURL + "/api/ingestion/status"
	if tenantID != "" {
		u += "?tenantId=" + url.QueryEscape(tenantID)
	}
	resp, err := http.Get(u)
	if err != nil {
		return err
	}
	return copyResponse(resp, out)
}

func runAssess(apiURL, file string, out io.Writer) error {
	payload, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	resp, err := http.Post(apiURL+"/api/governance/dlp/assess-risk", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	return copyResponse(resp, out)
}

func copyResponse(resp *http.Response, out io.Writer) error {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}

package display

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// resolutionRegex matches strings like "3456 x 2234", "2880 x 1864 Retina" or "1920x1080".
var resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)

// parseXdpyinfo reads the first "dimensions:" line of xdpyinfo output, such as
// "dimensions:    1920x1080 pixels (508x285 millimeters)".
func parseXdpyinfo(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "dimensions:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			return parseResolution(fields[1])
		}
	}
	return 0, 0, fmt.Errorf("no dimensions in xdpyinfo output")
}

// systemProfilerOutput is the part of `system_profiler SPDisplaysDataType -json` we read.
type systemProfilerOutput struct {
	Displays []struct {
		NDRVs []struct {
			Resolution string `json:"_spdisplays_pixels"`
			Main       string `json:"spdisplays_main"`
		} `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

// parseSystemProfiler returns the main display's size, or the first
// display's when none is marked main.
func parseSystemProfiler(data []byte) (int, int, error) {
	var profiler systemProfilerOutput
	if err := json.Unmarshal(data, &profiler); err != nil {
		return 0, 0, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}

	first := ""
	for _, gpu := range profiler.Displays {
		for _, d := range gpu.NDRVs {
			if d.Main == "spdisplays_yes" {
				return parseResolution(d.Resolution)
			}
			if first == "" {
				first = d.Resolution
			}
		}
	}
	if first == "" {
		return 0, 0, fmt.Errorf("no displays found in system_profiler output")
	}
	return parseResolution(first)
}

func parseResolution(s string) (int, int, error) {
	m := resolutionRegex.FindStringSubmatch(s)
	if len(m) < 3 {
		return 0, 0, fmt.Errorf("failed to parse resolution from %q", s)
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	return w, h, nil
}

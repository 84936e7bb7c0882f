package gps

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"
)

// NMEAProvider reads NMEA 0183 sentences straight from a serial GPS, for
// machines where no gpsd is running. Any receiver emitting standard RMC
// sentences works.
type NMEAProvider struct {
	portPath string
	baudRate int
}

func NewNMEAProvider(portPath string, baudRate int) *NMEAProvider {
	if baudRate == 0 {
		baudRate = 9600 // Standard NMEA default
	}
	return &NMEAProvider{portPath: portPath, baudRate: baudRate}
}

func (p *NMEAProvider) Name() string { return "nmea" }

// Acquire reads sentences until the first checksum-valid RMC with an active
// fix, or until ctx expires.
func (p *NMEAProvider) Acquire(ctx context.Context) (Fix, error) {
	mode := &serial.Mode{
		BaudRate: p.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(p.portPath, mode)
	if err != nil {
		return Fix{}, fmt.Errorf("opening %s: %w", p.portPath, err)
	}
	defer func() { _ = port.Close() }()
	_ = port.SetReadTimeout(200 * time.Millisecond)

	scanner := bufio.NewScanner(port)
	for {
		if ctx.Err() != nil {
			return Fix{}, fmt.Errorf("waiting for GPS fix: %w", ctx.Err())
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return Fix{}, fmt.Errorf("reading %s: %w", p.portPath, err)
			}
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if fix, ok := parseRMC(line); ok {
			return fix, nil
		}
	}
}

// parseRMC extracts an active fix from an RMC sentence:
// $GPRMC,hhmmss.ss,A,llll.ll,a,yyyyy.yy,a,...
func parseRMC(line string) (Fix, bool) {
	if !strings.HasPrefix(line, "$GPRMC") && !strings.HasPrefix(line, "$GNRMC") {
		return Fix{}, false
	}
	if !validChecksum(line) {
		return Fix{}, false
	}

	parts := splitSentence(line)
	if len(parts) < 7 || parts[2] != "A" {
		return Fix{}, false
	}

	lat, okLat := parseCoord(parts[3], parts[4])
	lon, okLon := parseCoord(parts[5], parts[6])
	if !okLat || !okLon {
		return Fix{}, false
	}
	return Fix{Lat: lat, Lon: lon, Time: time.Now()}, true
}

// splitSentence splits a sentence and strips the leading $ and the checksum.
func splitSentence(line string) []string {
	if idx := strings.Index(line, "*"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimPrefix(line, "$")
	return strings.Split(line, ",")
}

// parseCoord converts NMEA ddmm.mmmm plus hemisphere to decimal degrees.
func parseCoord(raw, dir string) (float64, bool) {
	if raw == "" || dir == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	deg := math.Floor(val / 100)
	min := val - deg*100
	result := deg + min/60

	if dir == "S" || dir == "W" {
		result = -result
	}
	return result, true
}

// validChecksum verifies the XOR checksum after *.
func validChecksum(line string) bool {
	idx := strings.Index(line, "*")
	if idx < 0 || idx+3 > len(line) {
		return false
	}
	body := line[1:idx] // Between $ and *
	var calc byte
	for i := 0; i < len(body); i++ {
		calc ^= body[i]
	}
	expected, err := strconv.ParseUint(line[idx+1:idx+3], 16, 8)
	if err != nil {
		return false
	}
	return byte(expected) == calc
}

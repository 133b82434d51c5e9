package capture

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// Enumeration limits. Probing is bounded at MaxDevices times
// ProbeTimeout regardless of how many devices hang.
const (
	MaxDevices   = 10
	ProbeTimeout = 2 * time.Second
)

// Device describes one probed capture device. Results are ephemeral and
// recomputed on every enumeration, never cached.
type Device struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Working bool   `json:"working"`
}

// Prober attempts to open a device and read one frame. Replaceable in
// tests.
type Prober func(index int) bool

// Enumerate probes device indices 0 through maxDevices-1 and reports
// which ones deliver frames. Each probe is abandoned after timeout, so a
// hung driver cannot stall the call beyond maxDevices*timeout.
func Enumerate(maxDevices int, timeout time.Duration, probe Prober) []Device {
	if maxDevices <= 0 {
		maxDevices = MaxDevices
	}
	if timeout <= 0 {
		timeout = ProbeTimeout
	}
	if probe == nil {
		probe = probeDevice
	}

	devices := make([]Device, 0, maxDevices)
	for i := 0; i < maxDevices; i++ {
		devices = append(devices, Device{
			Index:   i,
			Name:    fmt.Sprintf("Camera %d", i),
			Working: probeWithTimeout(i, timeout, probe),
		})
	}
	return devices
}

// Recommended returns the lowest working device index, or 0 when none
// work.
func Recommended(devices []Device) int {
	for _, d := range devices {
		if d.Working {
			return d.Index
		}
	}
	return 0
}

// probeWithTimeout runs probe in its own goroutine and gives up after
// timeout. An abandoned probe finishes (and releases its device) in the
// background; its late result is discarded.
func probeWithTimeout(index int, timeout time.Duration, probe Prober) bool {
	done := make(chan bool, 1)
	go func() {
		done <- probe(index)
	}()

	select {
	case ok := <-done:
		return ok
	case <-time.After(timeout):
		return false
	}
}

// probeDevice opens a device and tries to read one frame.
func probeDevice(index int) bool {
	capture, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return false
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := capture.Read(&frame); !ok {
		return false
	}
	return !frame.Empty()
}

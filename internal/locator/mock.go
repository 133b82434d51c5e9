package locator

import "gocv.io/x/gocv"

// MockLocator is a test implementation of the Locator interface.
// It allows tests to control the detection result.
type MockLocator struct {
	box   *Box
	err   error
	calls int
}

// NewMockLocator creates a new MockLocator instance.
func NewMockLocator() *MockLocator {
	return &MockLocator{}
}

// SetBox sets the box that will be returned by Locate.
func (m *MockLocator) SetBox(box *Box) {
	m.box = box
}

// SetError sets the error that will be returned by Locate.
func (m *MockLocator) SetError(err error) {
	m.err = err
}

// Calls returns how many times Locate has been invoked.
func (m *MockLocator) Calls() int {
	return m.calls
}

// Locate returns the pre-configured box or error.
func (m *MockLocator) Locate(img *gocv.Mat) (*Box, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.box, nil
}

// Close is a no-op for the mock locator.
func (m *MockLocator) Close() error {
	return nil
}

// Package testutil provides utilities for testing dac components.
//
// Key components:
//   - TestEnvironment: an isolated detections repository in a temp directory
//     with helpers to lay out customers
//   - FakeKibana: an httptest server speaking the detection engine endpoints
//     dac uses, recording every bulk action it receives
//   - file helpers (CreateFile, CreateDir, ReadFile, ...)
//
// All test data should be defined inline, not in external files.
package testutil

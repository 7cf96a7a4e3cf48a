// Package kibana is a thin client for the Kibana Security Detections API.
//
// It speaks the endpoints dac needs (find, get, create, update and the bulk
// action endpoint) and nothing else. Every non-2xx response and every
// transport failure surfaces as an error with code BACKEND; nothing is
// retried.
package kibana

// Package models defines the YAML documents dac reads and writes.
//
// Three documents live in a detections repository:
//
//   - the enablement manifest (customers/<id>/in-scope-rules.yaml, and the
//     generated enablement.yaml in a customer's enabled-rules repo), listing
//     rule_ids that should be enabled or disabled
//   - the customer configuration (customers/<id>/config.yaml)
//   - rule overrides (customers/<id>/overrides/*.yaml)
//
// Decoding never stops at the first problem. Every decode function returns
// the full list of FieldErrors so `dac validate` can show all of them in one
// pass.
package models

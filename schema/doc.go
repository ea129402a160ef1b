// Package schema validates the open "features" and "metadata" maps carried
// by a license.
//
// A [Schema] declares fields with an expected [Type], a required flag and a
// list of [Rule] values. Validation is total: every declared field is
// checked, every rule of a field runs even after another rule failed, and the
// result lists all messages per field. Unknown keys are rejected unless the
// schema allows them.
//
// Schemas are usually written in YAML and read with [Parse] or [Load]:
//
//	features:
//	  allow_unknown: false
//	  fields:
//	    seats:
//	      type: integer
//	      required: true
//	      range: {min: 1, max: 500}
//	    modules:
//	      type: array
//	      min_items: 1
//	      items: {type: string, one_of: [reports, export, api]}
//	metadata:
//	  allow_unknown: true
package schema

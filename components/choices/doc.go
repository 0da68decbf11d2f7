// Package choices serves the prediction form's option lists as JSON so
// scripted clients can populate and filter select inputs.
//
// The handler answers GET and HEAD requests on a route carrying the field
// name as the {field} path value, and supports query and limit parameters to
// filter the list.
package choices

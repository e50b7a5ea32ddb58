// Package forms defines the field catalog, form configurations and
// submissions collected through them.
//
// # Field Catalog
//
// Forms are assembled from a closed [Catalog] of field definitions keyed by
// [FieldKey]. Each definition names its input kind (text, date, select, ...)
// and validation kind (phone, aadhaar, email, ...). Unknown keys are rejected
// at the boundary by [Lookup] and [FormConfig.Validate]; they are never
// stored.
//
// # Submissions
//
// A [Submission] holds [Values] keyed by field name. Text fields are strings;
// the photo field holds a [Photo] describing the uploaded image.
// [ValidateSubmission] checks required fields and each value against its
// validation kind.
//
// # Formatting
//
// [Label] and [DisplayValue] are the single place that decides how a field is
// titled and printed on a card or in a listing.
package forms

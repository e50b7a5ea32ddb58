// Package io provides JSON backup and restore of the stored documents.
//
// # Overview
//
// A dump holds every form, every submission and the card settings in one
// JSON document. Dumps move data between deployments (for example from a
// development instance on the in-memory store to MongoDB) and serve as
// offline backups.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "exportedAt": "2024-06-01T10:00:00Z",
//	  "forms": [
//	    {"_id": "f1", "formName": "Admissions", "schoolName": "Green Valley", ...}
//	  ],
//	  "submissions": [
//	    {"_id": "s1", "formConfigId": "f1", "submissionData": {"name": "Asha"}, ...}
//	  ],
//	  "settings": {"backgroundImages": [...], "activeBackgroundId": "..."}
//	}
//
// Forms and submissions use the same field names as the HTTP API.
//
// # Restore
//
// [Restore] creates new documents: ids and timestamps are assigned by the
// target store and submissions are re-linked to the new form ids. Forms whose
// name is already taken in the target, or that fail validation, are skipped
// together with their submissions. Card settings are copied only when the
// target has no background images yet.
//
// Image files are not part of a dump; photo and background URLs are copied
// as they are.
package io

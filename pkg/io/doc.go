// Package io provides JSON import and export for conversation documents.
//
// # Overview
//
// Conversations are persisted as indented JSON so authored content diffs
// cleanly under version control. The same format is read by the graph editor
// and by the playback engine.
//
// # JSON Format
//
// The document has one required top-level array:
//
//	{
//	  "_conversation": [
//	    {
//	      "_id": 0,
//	      "_name": "Guide",
//	      "_text": "Welcome aboard.",
//	      "_textSpeed": 0.05,
//	      "_portraitPath": "portraits/guide.png",
//	      "_connectsTo": -1,
//	      "_choices": [
//	        {"_text": "Thanks", "_connectsTo": 1},
//	        {"_text": "Leave me alone", "_connectsTo": 2}
//	      ],
//	      "_offsetX": 80, "_offsetY": 80, "_width": 320, "_height": 240
//	    }
//	  ]
//	}
//
// Every line key is optional and takes the defaults documented in package
// dialogue. A document whose _conversation array is absent or empty is
// rejected with [errors.ErrCodeDocumentMalformed]; a path that does not exist
// is rejected with [errors.ErrCodeDocumentNotFound].
//
// # Usage
//
//	conv, err := io.ImportJSON("scripts/intro.json")
//	if err != nil {
//	    return err
//	}
//	return io.ExportJSON(conv, "scripts/intro.json")
package io

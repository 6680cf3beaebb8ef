// Package server exposes the conversation editor and player over HTTP.
//
// # Overview
//
// A [Server] keeps any number of editor sessions in memory. Each session
// owns one [editor.Editor]; every request on a session is serialized by the
// session's mutex, so the editor itself never sees concurrent calls.
// Documents live in a [store.Store] and are loaded into and saved from
// sessions by name.
//
// Remote playback runs over a WebSocket at /play/{name}. One goroutine owns
// the [playback.Engine] for the connection: it receives player actions from
// the reader goroutine and reveal ticks from a [playback.ChannelTimer], and
// it alone writes frames back to the client.
//
// # Routes
//
//	POST   /sessions                                 create a session
//	GET    /sessions/{sid}                           session state
//	DELETE /sessions/{sid}                           discard a session
//	POST   /sessions/{sid}/load                      load a stored document
//	POST   /sessions/{sid}/save                      save the graph to the store
//	POST   /sessions/{sid}/clear                     remove every node
//	POST   /sessions/{sid}/nodes                     add a node
//	PATCH  /sessions/{sid}/nodes/{nid}               edit node fields or geometry
//	POST   /sessions/{sid}/nodes/{nid}/choices       add a choice
//	PUT    /sessions/{sid}/nodes/{nid}/choices/{idx} set a choice label
//	DELETE /sessions/{sid}/nodes/{nid}/choices/{idx} delete the last choice
//	POST   /sessions/{sid}/connections               connect two slots
//	DELETE /sessions/{sid}/connections               disconnect two slots
//	POST   /sessions/{sid}/selection                 select or deselect nodes
//	POST   /sessions/{sid}/delete-selected           delete the selection
//	GET    /documents                                list stored documents
//	GET    /documents/{name}                         raw document
//	PUT    /documents/{name}                         store a document
//	DELETE /documents/{name}                         delete a document
//	GET    /documents/{name}/dot                     Graphviz source
//	GET    /documents/{name}/svg                     rendered graph
//	GET    /play/{name}                              WebSocket playback
//	GET    /version                                  build information
//
// Nodes are addressed by their stable handle, which survives renumbering.
// Errors are returned as {"error": CODE, "message": "..."} with a status
// derived from the error code.
package server

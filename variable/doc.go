// Package variable implements bind/define variables: typed, array-capable
// buffers exchanged with a database call interface. A variable owns the
// parallel per-element arrays the call interface reads and writes directly
// (flat value buffer, null indicators, actual lengths, return codes), the
// chunked dynamic storage used when element sizes are unknown until fetch,
// and the reference-counted links to dependent objects (LOBs, statements,
// row identifiers, object instances) held per array position.
//
// The call interface itself is a collaborator reached through the Conn, Lob,
// Stmt, Rowid and Object interfaces; during an execution round trip it
// drives the Round entry points to obtain buffer pointers element by
// element.
package variable

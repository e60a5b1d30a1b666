// Package localserver serves RESP on a Unix domain socket.
//
// The local listener shares the store with the TCP listener. Access is
// controlled by file system permissions on the socket, which is created
// with mode 0600 unless configured otherwise. A stale socket left by a
// crashed process is replaced; a live one is never taken over.
package localserver

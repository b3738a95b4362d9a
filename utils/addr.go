package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeListenAddr turns a bare port into a localhost listen address.
func NormalizeListenAddr(addr string) (string, error) {
	// if host is missing, default to localhost
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf("localhost:%d", port)
	}
	return addr, nil
}

// IsAddrAvailable reports whether a TCP listener can be opened on addr.
func IsAddrAvailable(addr string) bool {
	Verbose("Checking if %s is available", addr)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

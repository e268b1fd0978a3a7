package models

import (
	"net"
	"strconv"
)

// Service is the routing class of a daemon command.
type Service string

const (
	ServiceNormal  Service = "normal"
	ServiceControl Service = "control"
)

// Endpoint is the TCP address a command is delivered to.
type Endpoint struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

// String returns the dialable host:port form.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

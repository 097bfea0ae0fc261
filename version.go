package main

// Version is reported by --version. Set via -ldflags at build time:
//
//	go build -ldflags "-X main.Version=0.2.0" .
var Version = "dev"

// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command sc compresses, decompresses and inspects
// sparse-compressed bit arrays.
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	dashv bool
	dashh bool
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
}

func exitf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func logf(f string, args ...interface{}) {
	if f[len(f)-1] != '\n' {
		f += "\n"
	}
	fmt.Fprintf(os.Stderr, f, args...)
}

// verbose returns logf if -v was given and nil otherwise
func verbose() func(string, ...interface{}) {
	if dashv {
		return logf
	}
	return nil
}

type command struct {
	name  string
	usage string
	run   func(args []string)
}

var commands = []command{
	{"encode", "encode [-endian e] [-bits n] [-z algo] [-strong] [-bare] [-o out] <file>", encodeCmd},
	{"decode", "decode [-max bits] [-o out] <file>", decodeCmd},
	{"stats", "stats <file>...", statsCmd},
	{"bench", "bench [-n bits] [-p prob] [-seed n] [-endian e]", benchCmd},
	{"sweep", "sweep [-c config.yaml]", sweepCmd},
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-v] <command> [args...]\ncommands:\n", os.Args[0])
	for i := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[i].usage)
	}
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	args := flag.Args()
	if dashh || len(args) == 0 {
		usage()
		os.Exit(1)
	}
	for i := range commands {
		if commands[i].name == args[0] {
			commands[i].run(args)
			return
		}
	}
	usage()
	exitf("unknown command %q", args[0])
}

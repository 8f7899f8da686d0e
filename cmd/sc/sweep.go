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

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/SnellerInc/sparsebits/bitarray"
	"github.com/SnellerInc/sparsebits/sc"
)

// sweepConfig describes a sweep over bit densities.
// It is read from YAML or JSON.
type sweepConfig struct {
	// Bits is the length of each random array.
	Bits uint64 `json:"bits"`
	// Start and Stop bound the densities;
	// each step multiplies the density by Factor.
	Start  float64 `json:"start"`
	Stop   float64 `json:"stop"`
	Factor float64 `json:"factor"`
	Endian string  `json:"endian,omitempty"`
	Seed   int64   `json:"seed,omitempty"`
}

func defaultSweep() *sweepConfig {
	return &sweepConfig{
		Bits:   1 << 24,
		Start:  1e-8,
		Stop:   1.0,
		Factor: 1.8,
		Endian: "little",
		Seed:   1,
	}
}

func (c *sweepConfig) validate() error {
	if c.Start <= 0 || c.Stop <= c.Start {
		return fmt.Errorf("need 0 < start < stop, have start=%g stop=%g", c.Start, c.Stop)
	}
	if c.Factor <= 1 {
		return fmt.Errorf("factor %g must be greater than 1", c.Factor)
	}
	if c.Bits == 0 {
		return errors.New("bits must be positive")
	}
	_, err := bitarray.ParseEndian(c.Endian)
	return err
}

// parseSweep decodes a YAML or JSON sweep configuration;
// fields that are absent keep their defaults.
func parseSweep(data []byte) (*sweepConfig, error) {
	c := defaultSweep()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// sweep prints the compression ratio and block histogram
// for a geometric sequence of densities, checking that
// every array survives a round trip.
func sweep(w io.Writer, c *sweepConfig) error {
	e, err := bitarray.ParseEndian(c.Endian)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(c.Seed))
	var enc sc.Encoder
	var buf []byte
	fmt.Fprintf(w, "        p          ratio         raw    type 1    type 2    type 3    type 4\n")
	fmt.Fprintf(w, "   %s\n", strings.Repeat("-", 73))
	for p := c.Start; p < c.Stop; p *= c.Factor {
		a := bitarray.Random(rng, c.Bits, p, e)
		buf = enc.Encode(buf[:0], a)
		stats, err := sc.ReadStats(buf)
		if err != nil {
			return err
		}
		got, err := sc.Decode(buf)
		if err != nil {
			return err
		}
		if !got.Equal(a) {
			return fmt.Errorf("p=%g: round trip mismatch", p)
		}
		b := &stats.Blocks
		fmt.Fprintf(w, "  %11.8f  %11.8f  %8d  %8d  %8d  %8d  %8d\n",
			p, stats.Ratio(), b[sc.Raw], b[sc.Pos1], b[sc.Pos2], b[sc.Pos3], b[sc.Pos4])
	}
	return nil
}

func sweepCmd(args []string) {
	var dashc string
	flags := flag.NewFlagSet(args[0], flag.ExitOnError)
	flags.StringVar(&dashc, "c", "", "sweep configuration file (YAML or JSON)")
	flags.Parse(args[1:])
	c := defaultSweep()
	if dashc != "" {
		data, err := os.ReadFile(dashc)
		if err != nil {
			exitf("%s", err)
		}
		c, err = parseSweep(data)
		if err != nil {
			exitf("%s: %s", dashc, err)
		}
	}
	if dashv {
		logf("sweep: %+v", *c)
	}
	if err := sweep(os.Stdout, c); err != nil {
		exitf("sweep: %s", err)
	}
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-fresp/audio/duplex"
	"github.com/cwbudde/algo-fresp/audio/portaudio"
)

func runDevices(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("devices", "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := loadConfig(*cfgPath, nil); err != nil {
		return err
	}

	backend, err := portaudio.Open()
	if err != nil {
		return err
	}
	defer backend.Close()

	devs, err := backend.Devices()
	if err != nil {
		return err
	}
	defIn, defOut, err := backend.DefaultDevices()
	if err != nil {
		defIn, defOut = duplex.DefaultDevice, duplex.DefaultDevice
	}

	printDevices(stdout, devs, defIn, defOut)
	return nil
}

func printDevices(w io.Writer, devs []duplex.DeviceInfo, defIn, defOut duplex.DeviceID) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tIn\tOut\tRate\tDefault\n")
	fmt.Fprintf(tw, "--\t----\t--\t---\t----\t-------\n")
	for _, d := range devs {
		def := ""
		switch {
		case d.ID == defIn && d.ID == defOut:
			def = "in/out"
		case d.ID == defIn:
			def = "in"
		case d.ID == defOut:
			def = "out"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.0f\t%s\n",
			d.ID, d.Name, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, def)
	}
	tw.Flush()
}

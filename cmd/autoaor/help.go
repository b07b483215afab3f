package main

const helpText = `Spitzer AOR generator for exoplanet transits and eclipses.

Usage:
  autoaor [-o dir] [-j n] [-keep-past] [-stdout] [-v] <tep> <aai> <vis> [<tep> <aai> <vis> ...]
  autoaor times [-mode ingress|egress|midtimes] [-keep-past] [-v] <tep> <aai> <vis>
  autoaor calendar <jd> [<jd> ...]

autoaor reads a target ephemeris parameter file (.tep), an AOR parameter file
(.aai) and a SPOT visibility file (.vis) and writes a SPOT AOR file named after
the aai "aorname" together with a diagnostics report (<aorname>.diag.txt)
listing the predicted eclipse and transit mid-times. Files may be local paths
or http(s) URLs. Several targets are planned concurrently when more than one
triple is given.

Values in the .aai file override the same keys in the .tep file.

The times command prints the SPOT timing constraints (ingress or egress) or the
event mid-times without writing an AOR. The calendar command converts Julian
dates to UTC calendar dates.

Visibility windows that have already closed are ignored unless -keep-past is set.

Options:

  -o DIR        write AOR and diagnostics files to DIR
  -j N          plan at most N targets at once
  -keep-past    keep visibility windows that closed before now
  -stdout       print the AOR and diagnostics instead of writing files
  -mode MODE    times: ingress, egress or midtimes (default: ingress)
  -v            verbose logging

Configuration:

Defaults for the start window, center shift, mission, timing mode and output
directory are read from the YAML file named by AUTOAOR_CONFIG_PATH and from
AUTOAOR_* environment variables.

Exit status:

  0     success
  5     a planning file could not be read
  22    invalid usage or configuration
  5001  a required parameter is missing or out of range
  5002  no event falls inside any visibility window
  5003  unsupported instrument configuration
  5004  one or more targets of a batch failed
`

package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Save received packets to a log file.
 *
 * Description: One CSV line per packet for easy reading and later
 *		processing.
 *
 *		There are two alternatives here.
 *
 *		--log-file logfile	Specify full file path.
 *
 *		--log-dir logdir	Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Daily file names, UTC.
const DAILY_LOG_PATTERN = "%Y-%m-%d.log"

var packetLogHeader = []string{
	"utime", "isotime", "branch", "phr", "length", "dw", "fcs", "crc_ok", "corrected", "payload",
}

type PacketLog struct {
	daily_names bool
	path        string // Directory when daily_names, otherwise the file.
	pattern     *strftime.Strftime

	fp         *os.File
	open_fname string
}

/*------------------------------------------------------------------
 *
 * Function:	NewPacketLog
 *
 * Inputs:	daily_names	- True if daily names should be generated.
 *				  In this case path is a directory.
 *				  When false, path would be the file name.
 *
 *		path		- Log file name or just directory.
 *				  Use "." for current directory.
 *
 * Description:	A missing directory is created, one level only.  If
 *		that fails, or the path isn't a directory, the current
 *		directory is used instead.
 *
 *------------------------------------------------------------------*/

func NewPacketLog(daily_names bool, path string) (*PacketLog, error) {
	if len(path) == 0 {
		return nil, errors.New("packet log path is empty")
	}

	var pattern, err = strftime.New(DAILY_LOG_PATTERN)
	if err != nil {
		return nil, err
	}

	var l = &PacketLog{
		daily_names: daily_names,
		pattern:     pattern,
	}

	if !daily_names {
		logger.Info("packet log", "file", path)
		l.path = path
		return l, nil
	}

	var stat, statErr = os.Stat(path)
	if statErr == nil {
		// Exists, but is it a directory?
		if stat.IsDir() {
			l.path = path
		} else {
			logger.Error("packet log location is not a directory, using current directory", "path", path)
			l.path = "."
		}
	} else {
		// We don't create multiple levels like "mkdir -p"
		var mkdirErr = os.Mkdir(path, 0755)
		if mkdirErr == nil {
			logger.Info("packet log location created", "path", path)
			l.path = path
		} else {
			logger.Error("failed to create packet log location, using current directory", "path", path, "err", mkdirErr)
			l.path = "."
		}
	}

	return l, nil
}

// File name for a packet heard at time now.
func (l *PacketLog) fileName(now time.Time) string {
	if l.daily_names {
		return filepath.Join(l.path, l.pattern.FormatString(now.UTC()))
	}
	return l.path
}

/*------------------------------------------------------------------
 *
 * Function:	Write
 *
 * Purpose:	Save information about one packet.
 *
 * Description:	The file is kept open between packets and only
 *		reopened when the daily name changes.  A header suitable
 *		for importing into a spreadsheet is written to a new
 *		file.
 *
 *------------------------------------------------------------------*/

func (l *PacketLog) Write(p *Packet, now time.Time) error {
	now = now.UTC()

	var fname = l.fileName(now)

	// Close current file if name has changed
	if l.fp != nil && fname != l.open_fname {
		l.Close() //nolint:errcheck
	}

	var w *csv.Writer

	if l.fp == nil {
		// See if file already exists and not empty.
		var st, statErr = os.Stat(fname)
		var already_there = statErr == nil && st.Size() > 0

		logger.Debug("opening packet log", "file", fname)

		var f, openErr = os.OpenFile(fname, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
		if openErr != nil {
			return fmt.Errorf("can't open packet log for write: %w", openErr)
		}
		l.fp = f
		l.open_fname = fname

		w = csv.NewWriter(l.fp)
		if !already_there {
			w.Write(packetLogHeader) //nolint:errcheck
		}
	} else {
		w = csv.NewWriter(l.fp)
	}

	var h = p.Header()

	w.Write([]string{ //nolint:errcheck
		strconv.FormatInt(now.Unix(), 10),
		now.Format("2006-01-02T15:04:05Z"),
		p.Branch.String(),
		fmt.Sprintf("%04x", p.PHR),
		strconv.Itoa(int(h.FrameLength)),
		strconv.FormatBool(h.Whitening),
		h.FCSType().String(),
		strconv.FormatBool(p.CRCValid),
		strconv.Itoa(p.CorrectedBits),
		hex_string(p.Data()),
	})
	w.Flush()

	return w.Error()
}

func (l *PacketLog) Close() error {
	if l.fp == nil {
		return nil
	}
	var err = l.fp.Close()
	l.fp = nil
	l.open_fname = ""
	return err
}

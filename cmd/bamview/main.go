// bamview performs a single random-access region query against a coordinate
// sorted, BAI-indexed BAM file and writes the overlapping records as SAM
// text to stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"strconv"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/grailbio/bamra/encoding/record"
	"github.com/grailbio/bamra/encoding/samtext"
	"github.com/grailbio/bamra/genomic"
	"github.com/grailbio/bamra/randomaccess"
	"github.com/grailbio/bamra/storage"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

var (
	bamPath = flag.String("bam", "", "path to the coordinate-sorted BAM file (required)")
	baiPath = flag.String("bai", "", "path to the BAI index (defaults to <bam>.bai)")
	refID   = flag.Int("ref", 0, "0-based reference sequence id to query")
	beg     = flag.Uint("beg", 0, "0-based region start, inclusive")
	end     = flag.Uint("end", 0, "0-based region end, exclusive; 0 means to the end of the reference")
	workers = flag.Int("workers", 4, "parallel decompression workers; <=1 for synchronous")
	cache   = flag.Int("cache", bgzf.DefaultCacheSize, "decompressed block cache size; <=0 disables caching")
)

// numericRefNamer renders reference ids as "ref<N>" since this module never
// parses the BAM header's reference-name table (out of scope, see DESIGN.md).
type numericRefNamer struct{}

func (numericRefNamer) Name(id int32) string {
	if id < 0 {
		return "*"
	}
	return "ref" + strconv.Itoa(int(id))
}

func run() error {
	if *bamPath == "" {
		return errors.New("bamview: -bam is required")
	}
	baiFile := *baiPath
	if baiFile == "" {
		baiFile = *bamPath + ".bai"
	}
	// -end 0 requests an open-ended query running to the end of the
	// reference, represented as genomic.InfinityPos rather than a sentinel
	// the caller has to know about.
	queryEnd := uint32(*end)
	if queryEnd == 0 {
		queryEnd = uint32(genomic.InfinityPos)
	} else if queryEnd <= uint32(*beg) {
		return errors.Errorf("bamview: -end (%d) must be greater than -beg (%d)", *end, *beg)
	}

	ctx := context.Background()
	idx, err := randomaccess.LoadIndex(ctx, baiFile)
	if err != nil {
		return errors.Wrapf(err, "bamview: reading index %s", baiFile)
	}

	m := &randomaccess.Manager{
		Opener:  storage.LocalOpener{},
		Path:    *bamPath,
		Index:   idx,
		Decoder: record.NewDecoder(),
		Workers: *workers,
		Cache:   bgzf.NewFIFOCache(*cache),
	}

	it, err := m.Query(ctx, genomic.Range{RefID: int32(*refID), Beg: uint32(*beg), End: queryEnd})
	if err != nil {
		return errors.Wrap(err, "bamview: query")
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	n := 0
	for {
		rec, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "bamview: reading records")
		}
		if err := samtext.Write(out, rec, numericRefNamer{}); err != nil {
			return errors.Wrap(err, "bamview: writing record")
		}
		n++
	}
	vlog.VI(1).Infof("bamview: wrote %d records for ref=%d [%d,%d)", n, *refID, *beg, queryEnd)
	return nil
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	if err := run(); err != nil {
		vlog.Error(err)
		os.Exit(1)
	}
}

package progressbar

import (
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// New provides a custom progressbar to measure byte
// throughput with recommended defaults. size <= 0 means unknown length.
func New(size int64, prefix string) *pb.ProgressBar {
	bar := pb.New64(size)
	bar.SetRefreshRate(time.Second)
	bar.Set(pb.Bytes, true)
	bar.Set(pb.SIBytesPrefix, true)
	bar.SetTemplateString(`{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }}`)
	bar.SetWriter(os.Stderr)
	bar.Set("prefix", prefix)
	return bar
}

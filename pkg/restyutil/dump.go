package restyutil

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

type Output interface {
	Write(id string, contents string)
}

// Dumper writes every exchange of the clients it is attached to into an Output, the ids are
// numbered in the order the responses arrived.
type Dumper struct {
	output  Output
	prefix  string
	counter *uint64
	secrets *secretFields
}

type secretFields struct {
	mutex sync.RWMutex
	names map[string]struct{}
}

func (s *secretFields) contains(name string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.names[name]
	return ok
}

func NewDumper(output Output) Dumper {
	var counter uint64
	return Dumper{
		output:  output,
		prefix:  time.Now().Format("20060102-150405"),
		counter: &counter,
		secrets: &secretFields{names: map[string]struct{}{}},
	}
}

// Redact marks a form field whose value is never written out, in addition to any field
// named like a password.
func (d Dumper) Redact(field string) {
	if field == "" {
		return
	}
	d.secrets.mutex.Lock()
	defer d.secrets.mutex.Unlock()
	d.secrets.names[field] = struct{}{}
}

// Attach registers the dumper on a client, attaching the same dumper to several clients
// keeps a single numbering.
func (d Dumper) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(d.counter, 1)
		d.output.Write(
			fmt.Sprintf("%s-%03d-%s.txt", d.prefix, id, strings.ToLower(res.Request.Method)),
			formatHttpMessage(res, d.secrets.contains),
		)
		return nil
	})
}

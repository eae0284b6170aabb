package y2mate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const statusOK = "ok"

// reply is implemented by every decoded response.
type reply interface {
	check() error
}

type status struct {
	Status string `json:"status"`
	Mess   string `json:"mess"`
}

func (s status) check() error {
	if s.Status == statusOK {
		return nil
	}
	if s.Mess != "" {
		return fmt.Errorf("status %q: %s", s.Status, plain(s.Mess))
	}
	if s.Status == "" {
		return errors.New("missing status")
	}
	return fmt.Errorf("status %q", s.Status)
}

type link struct {
	Size  string `json:"size"`
	F     string `json:"f"`
	Q     string `json:"q"`
	QText string `json:"q_text"`
	K     string `json:"k"`
}

type relatedGroup struct {
	Title    string `json:"title"`
	Contents []struct {
		V string `json:"v"`
		T string `json:"t"`
	} `json:"contents"`
}

type analyzeReply struct {
	status
	Vid     string                                                              `json:"vid"`
	Title   string                                                              `json:"title"`
	A       string                                                              `json:"a"`
	T       json.Number                                                         `json:"t"`
	Links   *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, link]] `json:"links"`
	Related []relatedGroup                                                      `json:"related"`
}

func (r *analyzeReply) check() error {
	if err := r.status.check(); err != nil {
		return err
	}
	if r.Links == nil || r.Links.Len() == 0 {
		return errors.New("no links in response")
	}
	return nil
}

type convertReply struct {
	status
	CStatus  string `json:"c_status"`
	Vid      string `json:"vid"`
	Title    string `json:"title"`
	Ftype    string `json:"ftype"`
	Fquality string `json:"fquality"`
	Dlink    string `json:"dlink"`
}

func (r *convertReply) check() error {
	if err := r.status.check(); err != nil {
		return err
	}
	if r.Dlink == "" {
		return errors.New("no download link in response")
	}
	return nil
}

// decode parses body into out and applies its success contract. Empty and undecodable bodies fail.
func decode(body []byte, out reply) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return errors.New("empty response")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return out.check()
}

// plain strips markup some labels carry, e.g. "720p (.mp4) <span>m-HD</span>".
func plain(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hawarun/internal/ipc"
	"hawarun/internal/logging"
)

const rootElementName = "hawa-game"

// Manifest is the launch description extracted from a manifest file.
type Manifest struct {
	Path        string
	Directory   string
	Command     string
	Package     string
	App         string
	Arch        string
	SaveFilters []ipc.SaveFilter
}

type document struct {
	XMLName  xml.Name      `xml:"hawa-game"`
	Arch     string        `xml:"arch,attr"`
	GameIDs  []gameIDNode  `xml:"game-id"`
	Commands []commandNode `xml:"command"`
	Saves    []savesNode   `xml:"saves"`
}

type gameIDNode struct {
	Package string `xml:"package,attr"`
	App     string `xml:"app,attr"`
}

type commandNode struct {
	Text string
}

// UnmarshalXML keeps only the text that precedes the first child element,
// comment or processing instruction; later text runs are ignored.
func (c *commandNode) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var text strings.Builder
	leading := true
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if leading {
				text.Write(t)
			}
		case xml.StartElement:
			leading = false
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			c.Text = text.String()
			return nil
		default:
			leading = false
		}
	}
}

type savesNode struct {
	Includes []includeNode `xml:"include"`
}

type includeNode struct {
	Pattern  string        `xml:"pattern,attr"`
	Excludes []excludeNode `xml:"exclude"`
}

type excludeNode struct {
	Pattern string `xml:"pattern,attr"`
}

// Load reads and parses the manifest at path. Every failure is an *Error.
// path is made absolute first, so Directory is an absolute path even when
// path is relative.
func Load(path string, logger *slog.Logger) (*Manifest, error) {
	log := logging.NewComponentLogger(logger, "manifest")

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "resolve path", Err: err}
	}

	file, err := os.Open(absolute)
	if err != nil {
		log.Debug("manifest open failed", logging.String("path", absolute), logging.Error(err))
		return nil, &Error{Path: absolute, Reason: "open", Err: err}
	}
	defer file.Close()

	m, err := Parse(file, absolute)
	if err != nil {
		log.Debug("manifest parse failed", logging.String("path", absolute), logging.Error(err))
		return nil, err
	}
	log.Debug("manifest parsed",
		logging.String("path", absolute),
		logging.String("package", m.Package),
		logging.String("app", m.App),
		logging.Int("save_filters", len(m.SaveFilters)))
	return m, nil
}

// Parse decodes a manifest document read from r. path is the manifest's
// location and determines Directory; it is not opened.
func Parse(r io.Reader, path string) (*Manifest, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	start, err := rootElement(dec)
	if err != nil {
		return nil, &Error{Path: path, Reason: "malformed document", Err: err}
	}
	if start.Name.Local != rootElementName {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("root element is <%s>, expected <%s>", start.Name.Local, rootElementName)}
	}

	var doc document
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return nil, &Error{Path: path, Reason: "malformed document", Err: err}
	}
	if err := expectEnd(dec); err != nil {
		return nil, &Error{Path: path, Reason: "malformed document", Err: err}
	}

	if len(doc.GameIDs) == 0 {
		return nil, &Error{Path: path, Reason: "missing <game-id> element"}
	}
	if len(doc.Commands) == 0 {
		return nil, &Error{Path: path, Reason: "missing <command> element"}
	}

	return &Manifest{
		Path:        path,
		Directory:   filepath.Dir(path),
		Command:     doc.Commands[0].Text,
		Package:     doc.GameIDs[0].Package,
		App:         doc.GameIDs[0].App,
		Arch:        doc.Arch,
		SaveFilters: saveFilters(doc.Saves),
	}, nil
}

// Request converts the manifest into the daemon's launch request.
func (m *Manifest) Request() ipc.LaunchRequest {
	return ipc.LaunchRequest{
		Directory:   m.Directory,
		Command:     m.Command,
		Package:     m.Package,
		App:         m.App,
		SaveFilters: m.SaveFilters,
	}
}

// rootElement skips the prolog and returns the document element's start tag.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return xml.StartElement{}, errors.New("document has no root element")
			}
			return xml.StartElement{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return t, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return xml.StartElement{}, errors.New("text before root element")
			}
		}
	}
}

// expectEnd rejects anything but whitespace, comments and processing
// instructions after the document element.
func expectEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after root element", t.Name.Local)
		case xml.CharData:
			if len(strings.TrimSpace(string(t))) > 0 {
				return errors.New("text after root element")
			}
		}
	}
}

// saveFilters collects the include clauses of the first <saves> element.
// Clauses and excludes without a pattern are skipped.
func saveFilters(nodes []savesNode) []ipc.SaveFilter {
	if len(nodes) == 0 {
		return nil
	}
	var filters []ipc.SaveFilter
	for _, inc := range nodes[0].Includes {
		pattern := strings.TrimSpace(inc.Pattern)
		if pattern == "" {
			continue
		}
		filter := ipc.SaveFilter{Include: pattern, Exclude: []string{}}
		for _, exc := range inc.Excludes {
			if p := strings.TrimSpace(exc.Pattern); p != "" {
				filter.Exclude = append(filter.Exclude, p)
			}
		}
		filters = append(filters, filter)
	}
	return filters
}

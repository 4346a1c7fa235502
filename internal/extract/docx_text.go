package extract

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// paragraphText walks word/document.xml and emits each w:p followed by one newline.
func paragraphText(documentXML string) (string, error) {
	if strings.TrimSpace(documentXML) == "" {
		return "", errors.New("empty document.xml")
	}

	decoder := xml.NewDecoder(strings.NewReader(documentXML))
	var (
		buf    strings.Builder
		inText int
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText++
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				if inText > 0 {
					inText--
				}
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				buf.Write(t)
			}
		}
	}
	return buf.String(), nil
}

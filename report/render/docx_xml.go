package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// xmlNode is a small element tree. Names carry their prefix in Local
// (e.g. "w:p") so the encoder writes them verbatim.
type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

func el(name string, children ...*xmlNode) *xmlNode {
	n := &xmlNode{Name: xml.Name{Local: name}}
	return n.add(children...)
}

func textNode(s string) *xmlNode {
	return &xmlNode{IsText: true, Text: s}
}

func (n *xmlNode) attr(name, value string) *xmlNode {
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return n
}

func (n *xmlNode) add(children ...*xmlNode) *xmlNode {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// wval builds the common <w:x w:val="..."/> element.
func wval(name, value string) *xmlNode {
	return el(name).attr("w:val", value)
}

func encodeXMLPart(root *xmlNode) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	if err := encodeXMLNode(encoder, root); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXMLNode(encoder *xml.Encoder, node *xmlNode) error {
	if node.IsText {
		return encoder.EncodeToken(xml.CharData([]byte(node.Text)))
	}
	start := xml.StartElement{Name: node.Name, Attr: node.Attr}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := encodeXMLNode(encoder, child); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Space == wmlNamespace && name.Local == local
}

// validateDocumentXML rejects structures Word refuses to open: nested
// paragraphs, table rows whose cell count differs from the declared grid.
func validateDocumentXML(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var stack []string
	paraDepth := 0
	gridCols, rowCells, rowIndex := 0, 0, 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			switch {
			case isWmlElement(t.Name, "p"):
				paraDepth++
				if paraDepth > 1 {
					return fmt.Errorf("nested w:p at %s", strings.Join(stack, "/"))
				}
			case isWmlElement(t.Name, "tbl"):
				gridCols, rowIndex = 0, 0
			case isWmlElement(t.Name, "gridCol"):
				gridCols++
			case isWmlElement(t.Name, "tr"):
				rowCells = 0
				rowIndex++
			case isWmlElement(t.Name, "tc"):
				rowCells++
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case isWmlElement(t.Name, "p"):
				paraDepth--
			case isWmlElement(t.Name, "tr"):
				if gridCols == 0 || rowCells != gridCols {
					return fmt.Errorf("table row %d has %d cells, grid declares %d", rowIndex, rowCells, gridCols)
				}
			}
		}
	}
	return nil
}

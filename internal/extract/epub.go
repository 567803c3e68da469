package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var epubExtensions = []string{".epub"}

const containerPath = "META-INF/container.xml"

type epubContainer struct {
	RootFiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Metadata struct {
		Titles []string `xml:"title"`
	} `xml:"metadata"`
	Manifest struct {
		Items []epubItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type epubItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

func (i epubItem) isDocument() bool {
	switch i.MediaType {
	case "application/xhtml+xml", "text/html":
		return true
	}
	return false
}

// EPUBProcessor reads the XHTML documents of an EPUB container.
type EPUBProcessor struct {
	log processLog
}

// NewEPUBProcessor builds an EPUBProcessor.
func NewEPUBProcessor(logger *zap.Logger) *EPUBProcessor {
	return &EPUBProcessor{log: newProcessLog(logger, "epub")}
}

// ValidateExtension accepts .epub only.
func (p *EPUBProcessor) ValidateExtension(filename string) error {
	return validateExtension(filename, epubExtensions)
}

// Process opens the container, reads the Dublin Core title and the text of
// every spine document in reading order.
func (p *EPUBProcessor) Process(_ context.Context, content []byte, filename string) ProcessingResult {
	p.log.start(filename, len(content))

	if err := p.ValidateExtension(filename); err != nil {
		return failed(err.Error())
	}

	book, err := openEPUB(content)
	if err != nil {
		msg := "Failed to read EPUB file: " + err.Error()
		p.log.failure(filename, msg, err)
		return failed(msg)
	}

	text, documents, err := book.text()
	if err != nil {
		msg := "Failed to extract text from EPUB: " + err.Error()
		p.log.failure(filename, msg, err)
		return failed(msg)
	}
	if !hasContent(text) {
		p.log.failure(filename, msgNoContent, nil)
		return failed(msgNoContent)
	}

	p.log.success(filename, len(text))
	return succeeded(text, &FileInfo{
		Filename:  filename,
		Extension: ".epub",
		Size:      int64(len(content)),
		Title:     book.title(),
		Documents: documents,
	})
}

type epubBook struct {
	files  map[string]*zip.File
	opfDir string
	pkg    epubPackage
}

func openEPUB(content []byte) (*epubBook, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeXMLFile(files, containerPath, &container); err != nil {
		return nil, err
	}
	if len(container.RootFiles) == 0 || container.RootFiles[0].FullPath == "" {
		return nil, errors.New("container has no rootfile")
	}
	opfPath := container.RootFiles[0].FullPath

	book := &epubBook{files: files, opfDir: path.Dir(opfPath)}
	if err := decodeXMLFile(files, opfPath, &book.pkg); err != nil {
		return nil, err
	}
	return book, nil
}

func (b *epubBook) title() string {
	for _, t := range b.pkg.Metadata.Titles {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// documents lists spine items in reading order, or every XHTML manifest
// item when the spine is empty.
func (b *epubBook) documents() []epubItem {
	byID := make(map[string]epubItem, len(b.pkg.Manifest.Items))
	for _, item := range b.pkg.Manifest.Items {
		byID[item.ID] = item
	}

	var docs []epubItem
	for _, ref := range b.pkg.Spine.ItemRefs {
		if item, ok := byID[ref.IDRef]; ok && item.isDocument() {
			docs = append(docs, item)
		}
	}
	if len(docs) > 0 {
		return docs
	}

	for _, item := range b.pkg.Manifest.Items {
		if item.isDocument() {
			docs = append(docs, item)
		}
	}
	return docs
}

func (b *epubBook) text() (string, int, error) {
	var sb strings.Builder
	count := 0

	for _, item := range b.documents() {
		name := b.resolve(item.Href)
		f, ok := b.files[name]
		if !ok {
			continue
		}
		text, err := documentText(f)
		if err != nil {
			return "", 0, fmt.Errorf("%s: %w", name, err)
		}
		sb.WriteString(text)
		sb.WriteByte(' ')
		count++
	}

	return sb.String(), count, nil
}

func (b *epubBook) resolve(href string) string {
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if b.opfDir == "." {
		return path.Clean(href)
	}
	return path.Join(b.opfDir, href)
}

func documentText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return "", fmt.Errorf("parse xhtml: %w", err)
	}
	doc.Find("script, style").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}

func decodeXMLFile(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

package domain

import "strconv"

// SourceType identifies the document format a chunk was extracted from.
type SourceType string

const (
	SourceTypePDF  SourceType = "pdf"
	SourceTypeDocx SourceType = "docx"
	SourceTypeTxt  SourceType = "txt"
	SourceTypeXlsx SourceType = "xlsx"
)

// Metadata keys stored alongside each vector record.
const (
	MetaKeyPath      = "path"
	MetaKeyType      = "type"
	MetaKeyArea      = "area"
	MetaKeyPage      = "page"
	MetaKeyChunk     = "chunk"
	MetaKeySheet     = "sheet"
	MetaKeyRow       = "row"
	MetaKeyHeaderRow = "header_row"
)

// ChunkMeta describes where a chunk came from. Each source format has its
// own variant; Page, Sheet and Row report format-specific placement with
// ok=false when the format carries none. Flatten renders the variant as the
// flat string map persisted next to the vector.
type ChunkMeta interface {
	SourcePath() string
	SourceType() SourceType
	Page() (int, bool)
	Sheet() (string, bool)
	Row() (int, bool)
	Flatten() map[string]string
}

// Chunk is the atomic retrievable unit.
type Chunk struct {
	Text string
	Meta ChunkMeta
}

// PDFChunkMeta locates a chunk inside a PDF page.
type PDFChunkMeta struct {
	Path    string
	PageNum int // 1-based
	Seq     int // chunk index within the page
}

func (m PDFChunkMeta) SourcePath() string     { return m.Path }
func (m PDFChunkMeta) SourceType() SourceType { return SourceTypePDF }
func (m PDFChunkMeta) Page() (int, bool)      { return m.PageNum, true }
func (m PDFChunkMeta) Sheet() (string, bool)  { return "", false }
func (m PDFChunkMeta) Row() (int, bool)       { return 0, false }

func (m PDFChunkMeta) Flatten() map[string]string {
	return map[string]string{
		MetaKeyPath:  m.Path,
		MetaKeyType:  string(SourceTypePDF),
		MetaKeyPage:  strconv.Itoa(m.PageNum),
		MetaKeyChunk: strconv.Itoa(m.Seq),
	}
}

// DocxChunkMeta locates a chunk inside a DOCX document.
type DocxChunkMeta struct {
	Path string
	Seq  int
}

func (m DocxChunkMeta) SourcePath() string     { return m.Path }
func (m DocxChunkMeta) SourceType() SourceType { return SourceTypeDocx }
func (m DocxChunkMeta) Page() (int, bool)      { return 0, false }
func (m DocxChunkMeta) Sheet() (string, bool)  { return "", false }
func (m DocxChunkMeta) Row() (int, bool)       { return 0, false }

func (m DocxChunkMeta) Flatten() map[string]string {
	return map[string]string{
		MetaKeyPath:  m.Path,
		MetaKeyType:  string(SourceTypeDocx),
		MetaKeyChunk: strconv.Itoa(m.Seq),
	}
}

// TxtChunkMeta locates a chunk inside a plain-text file.
type TxtChunkMeta struct {
	Path string
	Seq  int
}

func (m TxtChunkMeta) SourcePath() string     { return m.Path }
func (m TxtChunkMeta) SourceType() SourceType { return SourceTypeTxt }
func (m TxtChunkMeta) Page() (int, bool)      { return 0, false }
func (m TxtChunkMeta) Sheet() (string, bool)  { return "", false }
func (m TxtChunkMeta) Row() (int, bool)       { return 0, false }

func (m TxtChunkMeta) Flatten() map[string]string {
	return map[string]string{
		MetaKeyPath:  m.Path,
		MetaKeyType:  string(SourceTypeTxt),
		MetaKeyChunk: strconv.Itoa(m.Seq),
	}
}

// XlsxRowMeta locates a spreadsheet row and carries the key fields extracted
// from it. Keys maps domain key names (contenedor, factura, ...) to their
// normalized values and backs exact-match lookup.
type XlsxRowMeta struct {
	Path      string
	SheetName string
	RowNum    int // 1-based sheet row
	HeaderRow int // 1-based row the headers were found on
	Keys      map[string]string
}

func (m XlsxRowMeta) SourcePath() string     { return m.Path }
func (m XlsxRowMeta) SourceType() SourceType { return SourceTypeXlsx }
func (m XlsxRowMeta) Page() (int, bool)      { return 0, false }
func (m XlsxRowMeta) Sheet() (string, bool)  { return m.SheetName, true }
func (m XlsxRowMeta) Row() (int, bool)       { return m.RowNum, true }

func (m XlsxRowMeta) Flatten() map[string]string {
	out := map[string]string{
		MetaKeyPath:      m.Path,
		MetaKeyType:      string(SourceTypeXlsx),
		MetaKeySheet:     m.SheetName,
		MetaKeyRow:       strconv.Itoa(m.RowNum),
		MetaKeyHeaderRow: strconv.Itoa(m.HeaderRow),
	}
	for k, v := range m.Keys {
		out[k] = v
	}
	return out
}

// MetaFromMap rebuilds the typed variant from a flattened metadata map, as
// returned by the vector store. Unknown types come back as TxtChunkMeta so
// callers always get a usable source path.
func MetaFromMap(meta map[string]string) ChunkMeta {
	path := meta[MetaKeyPath]
	switch SourceType(meta[MetaKeyType]) {
	case SourceTypePDF:
		return PDFChunkMeta{
			Path:    path,
			PageNum: atoiOrZero(meta[MetaKeyPage]),
			Seq:     atoiOrZero(meta[MetaKeyChunk]),
		}
	case SourceTypeDocx:
		return DocxChunkMeta{Path: path, Seq: atoiOrZero(meta[MetaKeyChunk])}
	case SourceTypeXlsx:
		keys := make(map[string]string)
		for k, v := range meta {
			switch k {
			case MetaKeyPath, MetaKeyType, MetaKeyArea, MetaKeySheet, MetaKeyRow, MetaKeyHeaderRow:
			default:
				keys[k] = v
			}
		}
		return XlsxRowMeta{
			Path:      path,
			SheetName: meta[MetaKeySheet],
			RowNum:    atoiOrZero(meta[MetaKeyRow]),
			HeaderRow: atoiOrZero(meta[MetaKeyHeaderRow]),
			Keys:      keys,
		}
	default:
		return TxtChunkMeta{Path: path, Seq: atoiOrZero(meta[MetaKeyChunk])}
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

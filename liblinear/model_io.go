package liblinear

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// maxModelDim bounds nr_class and nr_feature read from a model header.
const maxModelDim = math.MaxInt32 - 1

// weightPrealloc caps the up-front W allocation; W grows as weights are read.
const weightPrealloc = 1 << 16

// WriteModel writes m in the LIBLINEAR text model format. Weights are
// written with 17 significant digits so that ReadModel restores them
// bit-for-bit.
func WriteModel(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("solver_type " + m.Solver.String() + "\n")
	bw.WriteString("nr_class " + strconv.Itoa(m.NrClass) + "\n")
	if m.Label != nil {
		bw.WriteString("label")
		for _, lab := range m.Label {
			bw.WriteString(" " + strconv.Itoa(lab))
		}
		bw.WriteString("\n")
	}
	bw.WriteString("nr_feature " + strconv.Itoa(m.NrFeature) + "\n")
	bw.WriteString("bias " + strconv.FormatFloat(m.Bias, 'g', 17, 64) + "\n")
	bw.WriteString("w\n")

	nrW := m.NrW()
	for i := 0; i < m.WSize(); i++ {
		for k := 0; k < nrW; k++ {
			bw.WriteString(strconv.FormatFloat(m.W[i*nrW+k], 'g', 17, 64))
			bw.WriteByte(' ')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadModel parses a model written by WriteModel or by LIBLINEAR itself.
func ReadModel(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)
	m := &Model{NrClass: -1, NrFeature: -1}
	seen := map[string]bool{}

	for {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, perrors.Wrap(err, "liblinear: model header truncated")
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if err == io.EOF {
				return nil, perrors.New("liblinear: model header truncated")
			}
			continue
		}
		key := fields[0]
		if key == "w" {
			break
		}
		seen[key] = true

		switch key {
		case "solver_type":
			if len(fields) != 2 {
				return nil, perrors.Newf("liblinear: malformed %s line", key)
			}
			st, perr := ParseSolverType(fields[1])
			if perr != nil {
				return nil, perr
			}
			m.Solver = st
		case "nr_class":
			if m.NrClass, err = parseIntField(fields); err != nil {
				return nil, err
			}
		case "nr_feature":
			if m.NrFeature, err = parseIntField(fields); err != nil {
				return nil, err
			}
		case "bias":
			if len(fields) != 2 {
				return nil, perrors.Newf("liblinear: malformed %s line", key)
			}
			if m.Bias, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, perrors.Wrap(err, "liblinear: bias")
			}
		case "label":
			m.Label = make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				lab, aerr := strconv.Atoi(f)
				if aerr != nil {
					return nil, perrors.Wrap(aerr, "liblinear: label")
				}
				m.Label = append(m.Label, lab)
			}
		default:
			return nil, perrors.Newf("liblinear: unknown model header %q", key)
		}
	}

	for _, key := range []string{"solver_type", "nr_class", "nr_feature", "bias"} {
		if !seen[key] {
			return nil, perrors.Newf("liblinear: model header is missing %s", key)
		}
	}
	if m.NrClass < 1 || m.NrFeature < 0 || m.NrClass > maxModelDim || m.NrFeature > maxModelDim {
		return nil, perrors.Newf("liblinear: invalid model dimensions nr_class=%d nr_feature=%d", m.NrClass, m.NrFeature)
	}
	if m.Solver.IsRegression() {
		m.Label = nil
	} else if len(m.Label) != m.NrClass {
		return nil, perrors.Newf("liblinear: expected %d labels, got %d", m.NrClass, len(m.Label))
	}

	wsize, nrW := m.WSize(), m.NrW()
	if wsize > math.MaxInt/nrW {
		return nil, perrors.Newf("liblinear: weight count overflows for nr_class=%d nr_feature=%d", m.NrClass, m.NrFeature)
	}
	total := wsize * nrW
	// ヘッダ値を信用せず、実際に読めた重みの分だけ伸ばす
	m.W = make([]float64, 0, min(total, weightPrealloc))
	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	for i := 0; i < total; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, perrors.Wrap(err, "liblinear: reading weights")
			}
			return nil, perrors.Newf("liblinear: expected %d weights, got %d", total, i)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, perrors.Wrap(err, "liblinear: weight")
		}
		m.W = append(m.W, v)
	}
	return m, nil
}

func parseIntField(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, perrors.Newf("liblinear: malformed %s line", fields[0])
	}
	v, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, perrors.Wrapf(err, "liblinear: %s", fields[0])
	}
	return v, nil
}

// SaveModel writes m to path.
func SaveModel(path string, m *Model) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return perrors.WithStack(err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = perrors.WithStack(cerr)
		}
	}()
	return WriteModel(f, m)
}

// LoadModel reads a model from path.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perrors.WithStack(err)
	}
	defer f.Close()
	return ReadModel(f)
}

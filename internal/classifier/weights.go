package classifier

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadWeights reads a raw little-endian float32 stream holding every
// parameter in state_dict order: conv1.weight, conv1.bias, conv2.weight,
// conv2.bias, fc1.weight, fc1.bias, fc2.weight, fc2.bias. The stream must
// end exactly after fc2.bias.
func (n *Net) LoadWeights(r io.Reader) error {
	br := bufio.NewReader(r)
	for _, p := range n.Params() {
		buf := make([]float32, len(p.Data))
		if err := binary.Read(br, binary.LittleEndian, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: stream ends inside %s %v", ErrWeights, p.Name, p.Shape)
			}
			return fmt.Errorf("read %s: %w", p.Name, err)
		}
		for i, v := range buf {
			p.Data[i] = float64(v)
		}
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after fc2.bias", ErrWeights)
	}
	return nil
}

// LoadWeightsFile opens path and calls LoadWeights.
func (n *Net) LoadWeightsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open weights: %w", err)
	}
	defer f.Close()
	return n.LoadWeights(f)
}

// WriteWeights writes the parameters in the format LoadWeights reads.
func (n *Net) WriteWeights(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range n.Params() {
		buf := make([]float32, len(p.Data))
		for i, v := range p.Data {
			buf[i] = float32(v)
		}
		if err := binary.Write(bw, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("write %s: %w", p.Name, err)
		}
	}
	return bw.Flush()
}

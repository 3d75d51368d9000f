package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// WAVInfo is the decoded fmt chunk and sample payload of a WAV file.
type WAVInfo struct {
	AudioFormat   uint16 // 1 = PCM
	Channels      int
	SampleRate    int
	BitsPerSample int
	Data          []byte
}

// IsPCM16 reports whether the payload is plain 16-bit PCM.
func (w *WAVInfo) IsPCM16() bool {
	return w.AudioFormat == 1 && w.BitsPerSample == 16
}

// EncodeWAV wraps little-endian 16-bit PCM samples in a canonical 44-byte
// RIFF/WAVE header.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	dataSize := len(pcm)
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	header := make([]byte, wavHeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")

	// fmt chunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)                            // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)                             // PCM format
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))              // channels
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))            // sample rate
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*channels*2)) // byte rate
	binary.LittleEndian.PutUint16(header[32:34], uint16(channels*2))            // block align
	binary.LittleEndian.PutUint16(header[34:36], 16)                            // bits per sample

	// data chunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	buf.Write(header)
	buf.Write(pcm)
	return buf.Bytes()
}

// DecodeWAV walks the RIFF chunks of a WAV file and returns its format and
// sample data. Unknown chunks (LIST, fact, ...) are skipped.
func DecodeWAV(data []byte) (*WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalid)
	}

	var info WAVInfo
	haveFmt := false
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size
		if size < 0 || end > len(data) {
			// Streaming writers leave the data size unset; take what is there.
			if id == "data" {
				end = len(data)
			} else {
				return nil, fmt.Errorf("%w: truncated %q chunk", ErrInvalid, id)
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: short fmt chunk", ErrInvalid)
			}
			f := data[body:end]
			info.AudioFormat = binary.LittleEndian.Uint16(f[0:2])
			info.Channels = int(binary.LittleEndian.Uint16(f[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(f[4:8]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(f[14:16]))
			if info.AudioFormat == 0xFFFE && size >= 26 {
				// WAVE_FORMAT_EXTENSIBLE: the real format is the first two bytes of the subformat GUID.
				info.AudioFormat = binary.LittleEndian.Uint16(f[24:26])
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrInvalid)
			}
			info.Data = data[body:end]
			if info.Channels < 1 || info.SampleRate < 1 {
				return nil, fmt.Errorf("%w: channels=%d rate=%d", ErrInvalid, info.Channels, info.SampleRate)
			}
			return &info, nil
		}

		pos = end
		if size%2 == 1 {
			pos++
		}
	}
	return nil, fmt.Errorf("%w: no data chunk", ErrInvalid)
}

// Samples converts little-endian 16-bit PCM bytes to samples. A trailing odd
// byte is ignored.
func Samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}

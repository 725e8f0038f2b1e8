package audio

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"riff wav", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), FormatWAV},
		{"id3 mp3", []byte("ID3\x03\x00\x00\x00"), FormatMP3},
		{"mpeg1 frame", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3},
		{"mpeg2 frame", []byte{0xFF, 0xF3, 0x48, 0xC4}, FormatMP3},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FormatFLAC},
		{"ogg", []byte("OggS\x00\x02"), FormatOGG},
		{"silk with hash", []byte("#OPD\x00"), FormatSILK},
		{"silk bare", []byte("OPD\x00\x01"), FormatSILK},
		{"m4a", []byte{0x1A, 0xE3, 0x00, 0x00}, FormatM4A},
		{"webm ebml", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x9F, 0x42, 0x86, 0x81}, FormatOGGOpus},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03, 0x04}, FormatOGGOpus},
		{"three bytes", []byte("RIF"), FormatOGGOpus},
		{"empty", nil, FormatOGGOpus},
		{"exactly four", []byte("RIFF"), FormatWAV},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.data); got != tc.want {
				t.Errorf("Classify() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	data := append([]byte("fLaC"), bytes.Repeat([]byte{0x7F}, 64)...)
	first := Classify(data)
	for i := 0; i < 10; i++ {
		if got := Classify(data); got != first {
			t.Fatalf("run %d: got %s, first run %s", i, got, first)
		}
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	data := []byte{0xff, 0xfb, 0x10, 0x20}
	orig := bytes.Clone(data)
	Classify(data)
	if !bytes.Equal(data, orig) {
		t.Error("Classify modified its input")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"wav", FormatWAV, false},
		{" MP3 ", FormatMP3, false},
		{"ogg-opus", FormatOGGOpus, false},
		{"webm", FormatOGGOpus, false},
		{"opus", FormatOGGOpus, false},
		{"aac", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseFormat(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormat_ExtensionAndContentType(t *testing.T) {
	for _, f := range Formats() {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
		if f.Extension() == "" {
			t.Errorf("%s has no extension", f)
		}
		if f.ContentType() == "" {
			t.Errorf("%s has no content type", f)
		}
	}
	if FormatOGGOpus.Extension() != "ogg" {
		t.Errorf("ogg-opus extension = %q", FormatOGGOpus.Extension())
	}
	unknown := Format("aac")
	if unknown.Valid() {
		t.Error("aac should not be valid")
	}
	if unknown.Extension() != "ogg" {
		t.Errorf("unknown extension = %q", unknown.Extension())
	}
	if unknown.ContentType() != "application/octet-stream" {
		t.Errorf("unknown content type = %q", unknown.ContentType())
	}
}

func TestBlob(t *testing.T) {
	b := NewBlob([]byte("RIFFxxxx"), "audio/wav; codecs=1")
	if b.MIMEHint != "audio/wav" {
		t.Errorf("MIMEHint = %q", b.MIMEHint)
	}
	if b.Size() != 8 || b.Empty() {
		t.Errorf("unexpected size %d", b.Size())
	}
	if b.Format() != FormatWAV {
		t.Errorf("Format() = %s", b.Format())
	}
	if !NewBlob(nil, "").Empty() {
		t.Error("nil data should be empty")
	}
}

package plot

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/henghuang/nifti"

	"mmutils/internal/models"
)

// ErrInvalidImage is returned for files that are not readable NIfTI-1 images.
var ErrInvalidImage = errors.New("invalid nifti image")

const headerSize = 348

// NIfTI-1 datatype codes
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
)

// bytesPerVoxel lists the datatypes the loader decodes.
var bytesPerVoxel = map[int16]int{
	dtUint8:   1,
	dtInt8:    1,
	dtInt16:   2,
	dtUint16:  2,
	dtInt32:   4,
	dtFloat32: 4,
	dtFloat64: 8,
}

// LoadVolume reads the first frame of a single-file .nii or .nii.gz image
// into a Volume. Voxels are decoded by the header datatype and scaled by
// scl_slope/scl_inter when the slope is set.
func LoadVolume(filename string) (*models.Volume, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening image %s: %w", filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filename, err)
		}
		defer gz.Close()
		r = gz
	}

	header, order, err := readHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filename, err)
	}

	vol, size, err := volumeFromHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filename, err)
	}

	if _, err := io.CopyN(io.Discard, r, int64(header.VoxOffset)-headerSize); err != nil {
		return nil, fmt.Errorf("%w: %s: truncated before voxel data", ErrInvalidImage, filename)
	}

	want := len(vol.Data) * size
	data, err := io.ReadAll(io.LimitReader(r, int64(want)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filename, err)
	}
	if len(data) < want {
		return nil, fmt.Errorf("%w: %s: %d bytes of voxel data, expected %d", ErrInvalidImage, filename, len(data), want)
	}

	decodeVoxels(vol.Data, data, header.Datatype, order)

	if slope := float64(header.SclSlope); slope != 0 && !math.IsNaN(slope) {
		inter := float64(header.SclInter)
		if math.IsNaN(inter) {
			inter = 0
		}
		for i, v := range vol.Data {
			vol.Data[i] = v*slope + inter
		}
	}

	return vol, nil
}

// readHeader decodes the fixed header in whichever byte order gives the
// expected header size.
func readHeader(r io.Reader) (nifti.Nifti1Header, binary.ByteOrder, error) {
	var header nifti.Nifti1Header

	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return header, nil, fmt.Errorf("short header: %v", err)
	}

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		if int32(order.Uint32(raw)) != headerSize {
			continue
		}
		if err := binary.Read(bytes.NewReader(raw), order, &header); err != nil {
			return header, nil, err
		}
		if string(header.Magic[:3]) != "n+1" {
			return header, nil, fmt.Errorf("magic %q is not a single-file image", header.Magic[:3])
		}
		if !(header.VoxOffset >= headerSize) {
			return header, nil, fmt.Errorf("voxel offset %g inside the header", header.VoxOffset)
		}
		return header, order, nil
	}

	return header, nil, fmt.Errorf("header size is not %d", headerSize)
}

// volumeFromHeader allocates the first frame of the image described by
// header and returns it with the size of a voxel in bytes.
func volumeFromHeader(header nifti.Nifti1Header) (*models.Volume, int, error) {
	size, ok := bytesPerVoxel[header.Datatype]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported datatype %d", header.Datatype)
	}
	if int(header.Bitpix) != 8*size {
		return nil, 0, fmt.Errorf("bitpix %d does not match datatype %d", header.Bitpix, header.Datatype)
	}

	ndim := int(header.Dim[0])
	if ndim < 1 || ndim > 7 {
		return nil, 0, fmt.Errorf("invalid dimension count %d", ndim)
	}
	dims := [4]int{1, 1, 1, 1}
	for i := 1; i <= ndim && i <= 4; i++ {
		dims[i-1] = int(header.Dim[i])
		if dims[i-1] < 1 {
			return nil, 0, fmt.Errorf("dimension %d has size %d", i, dims[i-1])
		}
	}

	vol := models.NewVolume(dims[0], dims[1], dims[2])
	vol.VoxelSize.X = float64(header.Pixdim[1])
	vol.VoxelSize.Y = float64(header.Pixdim[2])
	vol.VoxelSize.Z = float64(header.Pixdim[3])

	return vol, size, nil
}

func decodeVoxels(dst []float64, data []byte, datatype int16, order binary.ByteOrder) {
	for i := range dst {
		switch datatype {
		case dtUint8:
			dst[i] = float64(data[i])
		case dtInt8:
			dst[i] = float64(int8(data[i]))
		case dtInt16:
			dst[i] = float64(int16(order.Uint16(data[2*i:])))
		case dtUint16:
			dst[i] = float64(order.Uint16(data[2*i:]))
		case dtInt32:
			dst[i] = float64(int32(order.Uint32(data[4*i:])))
		case dtFloat32:
			dst[i] = float64(math.Float32frombits(order.Uint32(data[4*i:])))
		case dtFloat64:
			dst[i] = math.Float64frombits(order.Uint64(data[8*i:]))
		}
	}
}

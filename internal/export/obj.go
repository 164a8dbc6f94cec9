// Package export выгружает меши чанков в формате Wavefront OBJ.
package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/annel0/voxel-chunks/internal/world"
	"github.com/klauspost/compress/gzip"
)

// Summary - итог выгрузки
type Summary struct {
	Chunks   int `json:"chunks"`
	Vertices int `json:"vertices"`
	Faces    int `json:"faces"`
}

// WriteOBJ записывает меши чанков мира в out, по одной группе "o" на чанк.
// indices == nil означает все выделенные чанки. Пустые чанки пропускаются.
func WriteOBJ(out io.Writer, w *world.World, indices []int) (Summary, error) {
	if indices == nil {
		indices = w.AllocatedChunks()
	}

	bw := bufio.NewWriterSize(out, 1024*1024)
	var (
		sum  Summary
		mesh world.Mesh
	)

	if _, err := fmt.Fprintf(bw, "# voxel-chunks %v\n", w.Size()); err != nil {
		return sum, err
	}

	for _, index := range indices {
		if index < 0 || index >= w.ChunkCount() {
			return sum, fmt.Errorf("чанк %d вне мира (%d чанков)", index, w.ChunkCount())
		}
		c := w.Chunk(index)
		c.BuildMesh(&mesh)
		if mesh.Empty() {
			continue
		}
		if err := writeChunk(bw, c, &mesh, sum.Vertices); err != nil {
			return sum, fmt.Errorf("чанк %d: %w", index, err)
		}
		sum.Chunks++
		sum.Vertices += len(mesh.Vertices)
		sum.Faces += len(mesh.Indices) / 3
	}

	return sum, bw.Flush()
}

// WriteOBJGzip как WriteOBJ, но сжимает вывод gzip
func WriteOBJGzip(out io.Writer, w *world.World, indices []int) (Summary, error) {
	gz := gzip.NewWriter(out)
	sum, err := WriteOBJ(gz, w, indices)
	if err != nil {
		gz.Close()
		return sum, err
	}
	return sum, gz.Close()
}

// base - количество вершин, уже записанных в файл (индексы OBJ сквозные и начинаются с 1)
func writeChunk(bw *bufio.Writer, c *world.Chunk, mesh *world.Mesh, base int) error {
	p := c.LocalPosition()
	fmt.Fprintf(bw, "o chunk_%d_%d_%d\n", p.X, p.Y, p.Z)

	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X(), v.Position.Y(), v.Position.Z())
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vt %g %g\n", v.UV.X(), v.UV.Y())
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X(), v.Normal.Y(), v.Normal.Z())
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := int(mesh.Indices[i]) + base + 1
		b := int(mesh.Indices[i+1]) + base + 1
		d := int(mesh.Indices[i+2]) + base + 1
		if _, err := fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, d, d, d); err != nil {
			return err
		}
	}
	return nil
}

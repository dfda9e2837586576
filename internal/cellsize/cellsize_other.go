//go:build !unix

package cellsize

func query() Size {
	return Size{}
}

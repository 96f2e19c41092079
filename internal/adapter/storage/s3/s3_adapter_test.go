package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "cars/abc.jpg", objectKey("cars", "IMG_001.JPG", "abc"))
	assert.Equal(t, "spare-parts/abc.webp", objectKey("/spare-parts/", "x.webp", "abc"))
	assert.Equal(t, "abc", objectKey("", "noext", "abc"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/guvenoto/cars/abc.jpg", objectURL("http://localhost:9000/", "guvenoto", "cars/abc.jpg"))
}

package imagepath_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/thecontrarian/image-gateway/pkg/imagepath"
)

var _ = Describe("Resolve", func() {
	Context("with traversal attempts", func() {
		It("should reject a leading dot-dot segment", func() {
			_, err := imagepath.Resolve("../secret.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject an embedded dot-dot segment", func() {
			_, err := imagepath.Resolve("originals/../../etc/passwd.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject a percent-encoded dot-dot segment", func() {
			_, err := imagepath.Resolve("%2e%2e/secret.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should not reject dots inside filenames", func() {
			key, err := imagepath.Resolve("albums/some..name.jpg")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(key)).To(Equal("albums/some..name.jpg"))
		})
	})

	Context("with unsafe bytes", func() {
		It("should reject a literal null byte", func() {
			_, err := imagepath.Resolve("photo\x00.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject an encoded null byte", func() {
			_, err := imagepath.Resolve("photo%00.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject control characters", func() {
			_, err := imagepath.Resolve("pho\x1fto.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject characters outside the allow-list", func() {
			_, err := imagepath.Resolve("photo name.jpg")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})
	})

	Context("with extensions", func() {
		It("should reject a missing extension", func() {
			_, err := imagepath.Resolve("photo")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should reject an unknown extension", func() {
			_, err := imagepath.Resolve("archive.zip")
			Expect(err).To(MatchError(imagepath.ErrInvalidPath))
		})

		It("should accept every known image extension", func() {
			for _, ext := range []string{"jpg", "jpeg", "png", "webp", "gif", "avif", "tif", "tiff"} {
				_, err := imagepath.Resolve("photo." + ext)
				Expect(err).ToNot(HaveOccurred(), "extension %s", ext)
			}
		})

		It("should accept uppercase extensions", func() {
			key, err := imagepath.Resolve("photo.JPG")
			Expect(err).ToNot(HaveOccurred())
			Expect(key.MIME()).To(Equal("image/jpeg"))
		})
	})

	Context("with valid paths", func() {
		It("should normalize leading slashes", func() {
			key, err := imagepath.Resolve("/test/photo.jpg")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(key)).To(Equal("test/photo.jpg"))
		})

		It("should strip query string and fragment before validation", func() {
			key, err := imagepath.Resolve("test/photo.jpg?width=800#frag")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(key)).To(Equal("test/photo.jpg"))
		})

		It("should support nested keys", func() {
			key, err := imagepath.Resolve("2024/iceland/glacier-01.webp")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(key)).To(Equal("2024/iceland/glacier-01.webp"))
		})

		It("should re-resolve its own output to the same key", func() {
			key, err := imagepath.Resolve("test/photo.jpg")
			Expect(err).ToNot(HaveOccurred())

			again, err := imagepath.Resolve(string(key))
			Expect(err).ToNot(HaveOccurred())
			Expect(again).To(Equal(key))
		})
	})
})

var _ = Describe("Key", func() {
	It("should map extensions to MIME types", func() {
		key, err := imagepath.Resolve("test/photo.tiff")
		Expect(err).ToNot(HaveOccurred())
		Expect(key.MIME()).To(Equal("image/tiff"))
	})

	It("should prefix the storage namespace", func() {
		key, err := imagepath.Resolve("test/photo.jpg")
		Expect(err).ToNot(HaveOccurred())
		Expect(key.StorageKey("originals/")).To(Equal("originals/test/photo.jpg"))
	})

	It("should build the public URL segment by segment", func() {
		key, err := imagepath.Resolve("test/photo.jpg")
		Expect(err).ToNot(HaveOccurred())
		Expect(key.PublicURL("https://library.example.com/", "originals/")).
			To(Equal("https://library.example.com/originals/test/photo.jpg"))
	})

	It("should expose the filename", func() {
		key, err := imagepath.Resolve("2024/iceland/glacier-01.webp")
		Expect(err).ToNot(HaveOccurred())
		Expect(key.Filename()).To(Equal("glacier-01.webp"))
	})
})

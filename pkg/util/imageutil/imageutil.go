// Package imageutil 校验上传图片并把它缩放到最长边不超过上限
package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register png

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp

	"vedzeb_server/pkg/errorx"
)

// JPEGQuality 重新编码时的质量
const JPEGQuality = 85

// 允许的源格式，名称与 image.Decode 返回的 format 一致
var allowedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

var ErrUnsupportedImage = errorx.New(errorx.CodeInvalidParam, "Only JPEG, PNG and WebP images are allowed")

// Result 处理后的图片
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Process 解码图片，等比缩放到 maxDim×maxDim 以内，统一编码为 JPEG
// 透明区域铺白底
func Process(data []byte, maxDim int) (*Result, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || !allowedFormats[format] {
		return nil, ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUnsupportedImage
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "Corrupted image")
	}

	w, h := FitWithin(cfg.Width, cfg.Height, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "Encode image")
	}
	return &Result{Data: buf.Bytes(), ContentType: "image/jpeg", Width: w, Height: h}, nil
}

// FitWithin 等比缩放，只缩小不放大
func FitWithin(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}

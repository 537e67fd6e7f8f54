package services

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/completion"
)

const (
	PreviewMaxTokens = 500
	FullMaxTokens    = 4000
)

const systemPrompt = "Anda adalah konsultan bisnis berpengalaman yang memahami pasar UMKM Indonesia. " +
	"Jawab dalam Bahasa Indonesia yang jelas dan praktis, gunakan format Markdown."

const previewTemplate = `Berikan analisis singkat untuk ide bisnis berikut:

"%s"

Tulis maksimal 3 paragraf pendek:
1. Ringkasan potensi ide ini di pasar Indonesia.
2. Dua kekuatan dan dua tantangan utama.
3. Satu saran langkah pertama yang bisa langsung dilakukan.

Jangan menulis analisis SWOT lengkap, analisis kompetitor mendalam, strategi media sosial, atau informasi pendanaan.`

const fullTemplate = `Buat laporan validasi bisnis yang lengkap dan mendalam untuk ide bisnis berikut:

"%s"

Susun laporan dengan bagian-bagian berikut, masing-masing dengan judul Markdown:

## 1. Ringkasan Eksekutif
Gambaran umum ide, target pasar, proposisi nilai, dan kelayakan di Indonesia.

## 2. Analisis SWOT
Minimal 5 poin untuk setiap Kekuatan, Kelemahan, Peluang, dan Ancaman.

## 3. Analisis Kompetitor
Minimal 5 kompetitor atau alternatif (termasuk marketplace seperti Shopee, Tokopedia, TikTok Shop bila relevan), dengan kelebihan, kekurangan, dan kisaran harga.

## 4. Strategi Media Sosial dan TikTok
Strategi konten, ide video viral, pemanfaatan TikTok Shop dan affiliate, serta jadwal posting 30 hari pertama.

## 5. Strategi Pemasaran Digital
Kanal akuisisi, anggaran awal yang disarankan, dan metrik yang perlu dipantau.

## 6. Proyeksi Keuangan
Estimasi modal awal, biaya operasional bulanan, harga jual, titik impas, dan proyeksi 3 tahun dalam Rupiah.

## 7. Panduan Pendanaan
Program yang relevan seperti KUR (Kredit Usaha Rakyat), program Kementerian UMKM (KemenUKM), inkubator bisnis, dan syarat pengajuannya.

## 8. Rencana Aksi
Langkah konkret untuk 90 hari pertama.`

func previewRequest(idea string) completion.Request {
	return completion.Request{
		System:    systemPrompt,
		Prompt:    fmt.Sprintf(previewTemplate, idea),
		Tier:      completion.TierPreview,
		MaxTokens: PreviewMaxTokens,
	}
}

func fullRequest(idea string) completion.Request {
	return completion.Request{
		System:    systemPrompt,
		Prompt:    fmt.Sprintf(fullTemplate, idea),
		Tier:      completion.TierFull,
		MaxTokens: FullMaxTokens,
	}
}

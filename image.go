package winograd

// ImageTransform maps an input tensor I[Ci,iH,iW,N] to the transformed
// input V[N,6,6,Ci,tH,tW], tH = iH/4, tW = iW/4. Tile (th,tw) covers the
// 6×6 window starting at (4·th−1, 4·tw−1); positions outside the image read
// as zero. V[n,:,:,ci,th,tw] = Bᵀ·window·B.
func ImageTransform(I *Tensor) (*Tensor, error) {
	return imageTransform(I, 0)
}

func imageTransform(I *Tensor, workers int) (*Tensor, error) {
	const op = "ImageTransform"
	if err := I.validate(op, "I", 4); err != nil {
		return nil, err
	}
	ci, ih, iw, n := I.Shape[0], I.Shape[1], I.Shape[2], I.Shape[3]
	if ih%TileSize != 0 || iw%TileSize != 0 {
		return nil, NewShapeError(op, "image height and width must be multiples of %d, got %dx%d", TileSize, ih, iw)
	}

	tilesH, tilesW := ih/TileSize, iw/TileSize
	V := NewTensor(n, WindowSize, WindowSize, ci, tilesH, tilesW)

	// V[b,i,j,c,th,tw] lives at ((((b*6+i)*6+j)*Ci+c)*tH+th)*tW+tw
	posStride := ci * tilesH * tilesW
	err := parallelFor(workers, n*tilesH, func(task int) {
		b, th := task/tilesH, task%tilesH

		hstart := th*TileSize - 1
		hend := hstart + WindowSize - 1
		hstartTrunc := max(0, hstart)
		hendTrunc := min(hend, ih-1)
		hoff := hstartTrunc - hstart

		for tw := 0; tw < tilesW; tw++ {
			wstart := tw*TileSize - 1
			wend := wstart + WindowSize - 1
			wstartTrunc := max(0, wstart)
			wendTrunc := min(wend, iw-1)
			woff := wstartTrunc - wstart

			for c := 0; c < ci; c++ {
				var window [WindowSize][WindowSize]float32
				for y := hstartTrunc; y <= hendTrunc; y++ {
					row := &window[hoff+y-hstartTrunc]
					for x := wstartTrunc; x <= wendTrunc; x++ {
						row[woff+x-wstartTrunc] = I.Data[((c*ih+y)*iw+x)*n+b]
					}
				}

				v := transformImageTile(&window)
				base := (b*Positions*ci+c)*tilesH*tilesW + th*tilesW + tw
				for i := 0; i < WindowSize; i++ {
					for j := 0; j < WindowSize; j++ {
						V.Data[base+(i*WindowSize+j)*posStride] = v[i][j]
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return V, nil
}

// transformImageTile computes Bᵀ·d·B: Bᵀ on the left, then B on the right.
func transformImageTile(d *[WindowSize][WindowSize]float32) [WindowSize][WindowSize]float32 {
	var tmp [WindowSize][WindowSize]float32
	for i := 0; i < WindowSize; i++ {
		for j := 0; j < WindowSize; j++ {
			var sum float32
			for k := 0; k < WindowSize; k++ {
				sum += bt[i][k] * d[k][j]
			}
			tmp[i][j] = sum
		}
	}

	var v [WindowSize][WindowSize]float32
	for i := 0; i < WindowSize; i++ {
		for j := 0; j < WindowSize; j++ {
			var sum float32
			for k := 0; k < WindowSize; k++ {
				sum += tmp[i][k] * bt[j][k]
			}
			v[i][j] = sum
		}
	}
	return v
}

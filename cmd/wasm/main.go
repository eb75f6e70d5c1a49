//go:build js && wasm

// Command wasm is the browser side of the trigger: once the page has loaded
// it uploads whatever is picked in the #fileInput control as the current
// image and reloads the page when the server answers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"syscall/js"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/application"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/infrastructure/httpclient"
)

const inputID = "fileInput"

// pageReloader reloads the current page from the server.
type pageReloader struct{}

func (pageReloader) Reload(context.Context, domain.Submission) error {
	js.Global().Get("location").Call("reload")
	return nil
}

func main() {
	uploader, err := httpclient.NewUploader(httpclient.Config{
		ServerURL: js.Global().Get("location").Get("origin").String(),
		Path:      httpclient.DefaultPath,
	}, nil)
	if err != nil {
		log.Printf("[Trigger] %v", err)
		return
	}
	start(application.NewTrigger(uploader, pageReloader{}))

	select {}
}

// start binds the file input once the document has loaded. The module may
// start after the load event already fired.
func start(trigger *application.Trigger) {
	bind := func() {
		if err := bindInput(trigger); err != nil {
			log.Printf("[Trigger] %v", err)
		}
	}

	if js.Global().Get("document").Get("readyState").String() == "complete" {
		bind()
		return
	}

	var onLoad js.Func
	onLoad = js.FuncOf(func(js.Value, []js.Value) any {
		bind()
		onLoad.Release()
		return nil
	})
	js.Global().Call("addEventListener", "load", onLoad, map[string]any{"once": true})
}

func bindInput(trigger *application.Trigger) error {
	input := js.Global().Get("document").Call("getElementById", inputID)
	if input.IsNull() || input.IsUndefined() {
		return fmt.Errorf("#%s: %w", inputID, domain.ErrInputNotFound)
	}

	onChange := js.FuncOf(func(this js.Value, args []js.Value) any {
		files := args[0].Get("target").Get("files")
		if files.IsNull() || files.IsUndefined() || files.Length() == 0 {
			trigger.HandleSelection(context.Background(), nil)
			return nil
		}
		file := files.Index(0)

		// Event handlers must not block on promises.
		go func() {
			selected, err := readFile(file)
			if err != nil {
				log.Printf("[Trigger] reading %s: %v", file.Get("name").String(), err)
				return
			}
			trigger.HandleSelection(context.Background(), []domain.SelectedFile{selected})
		}()
		return nil
	})
	input.Set("onchange", onChange)
	return nil
}

func readFile(file js.Value) (domain.SelectedFile, error) {
	buf, err := await(file.Call("arrayBuffer"))
	if err != nil {
		return domain.SelectedFile{}, err
	}
	view := js.Global().Get("Uint8Array").New(buf)
	data := make([]byte, view.Get("length").Int())
	js.CopyBytesToGo(data, view)

	return domain.FileFromBytes(file.Get("name").String(), file.Get("type").String(), data), nil
}

func await(promise js.Value) (js.Value, error) {
	type outcome struct {
		value js.Value
		err   error
	}
	done := make(chan outcome, 1)

	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{value: args[0]}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)
	o := <-done
	return o.value, o.err
}

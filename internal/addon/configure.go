package addon

// configurePageHTML is the browser-facing configuration form: it builds
// the base64-JSON config object of spec §6.A client-side and links to the
// resulting manifest URL. Kept deliberately framework-free (no static
// asset pipeline in the teacher repo to build on).
const configurePageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>StreamFusion configuration</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 640px; margin: 2rem auto; color: #222; }
  label { display: block; margin-top: 1rem; font-weight: 600; }
  input, select { width: 100%; padding: 0.4rem; margin-top: 0.25rem; box-sizing: border-box; }
  .row { display: flex; gap: 1rem; }
  .row > div { flex: 1; }
  button { margin-top: 1.5rem; padding: 0.6rem 1.2rem; font-size: 1rem; }
  #manifestUrl { margin-top: 1rem; word-break: break-all; font-family: monospace; background: #f4f4f4; padding: 0.5rem; }
</style>
</head>
<body>
<h1>StreamFusion</h1>
<p>Configure your indexers and debrid provider, then install the generated manifest in your player.</p>

<label>API key</label>
<input id="apiKey" placeholder="uuid">

<div class="row">
  <div>
    <label>RealDebrid token</label>
    <input id="RDToken" placeholder="leave blank if using OAuth below">
  </div>
  <div>
    <label>AllDebrid token</label>
    <input id="ADToken">
  </div>
</div>
<div class="row">
  <div>
    <label>Torbox token</label>
    <input id="TBToken">
  </div>
  <div>
    <label>Premiumize token</label>
    <input id="PMToken">
  </div>
</div>

<p>Alternatively, authorize RealDebrid via its device-code OAuth flow and paste the resulting credentials here; these take priority over the RealDebrid token above.</p>
<div class="row">
  <div>
    <label>RealDebrid client ID</label>
    <input id="RDClientId">
  </div>
  <div>
    <label>RealDebrid client secret</label>
    <input id="RDClientSecret">
  </div>
  <div>
    <label>RealDebrid refresh token</label>
    <input id="RDRefreshToken">
  </div>
</div>

<label>Metadata provider</label>
<select id="metadataProvider">
  <option value="cinemeta">Cinemeta</option>
  <option value="tmdb">TMDB</option>
</select>

<label>Sort</label>
<select id="sort">
  <option value="quality">Quality</option>
  <option value="sizeasc">Size, ascending</option>
  <option value="sizedesc">Size, descending</option>
  <option value="qualitythensize">Quality, then size</option>
</select>

<label><input type="checkbox" id="cache" checked style="width:auto;display:inline"> Public cache</label>
<label><input type="checkbox" id="zilean" checked style="width:auto;display:inline"> Zilean / DMM</label>
<label><input type="checkbox" id="yggflix" style="width:auto;display:inline"> Yggflix</label>
<label><input type="checkbox" id="sharewood" style="width:auto;display:inline"> Sharewood</label>
<label><input type="checkbox" id="jackett" style="width:auto;display:inline"> Jackett / Prowlarr</label>
<label><input type="checkbox" id="torrenting" style="width:auto;display:inline"> Offer direct-torrent fallback</label>

<button onclick="generate()">Generate manifest URL</button>
<div id="manifestUrl"></div>

<script>
function generate() {
  const cfg = {
    apiKey: document.getElementById('apiKey').value,
    RDToken: document.getElementById('RDToken').value,
    RDClientId: document.getElementById('RDClientId').value,
    RDClientSecret: document.getElementById('RDClientSecret').value,
    RDRefreshToken: document.getElementById('RDRefreshToken').value,
    ADToken: document.getElementById('ADToken').value,
    TBToken: document.getElementById('TBToken').value,
    PMToken: document.getElementById('PMToken').value,
    metadataProvider: document.getElementById('metadataProvider').value,
    sort: document.getElementById('sort').value,
    cache: document.getElementById('cache').checked,
    zilean: document.getElementById('zilean').checked,
    yggflix: document.getElementById('yggflix').checked,
    sharewood: document.getElementById('sharewood').checked,
    jackett: document.getElementById('jackett').checked,
    torrenting: document.getElementById('torrenting').checked,
    addonHost: window.location.origin,
  };
  const encoded = btoa(JSON.stringify(cfg)).replace(/=/g, '%3D');
  const url = window.location.origin + '/' + encoded + '/manifest.json';
  document.getElementById('manifestUrl').textContent = url;
}
</script>
</body>
</html>
`

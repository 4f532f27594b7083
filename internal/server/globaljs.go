package server

import (
	"fmt"
	"net/http"
)

// handleLandingJS serves the page script that reports interactions
func (s *Server) handleLandingJS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Determine server URL from request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	serverURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	script := GenerateLandingScript(serverURL)

	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write([]byte(script))
}

// GenerateLandingScript returns landing.js for serverURL. The script posts
// raw interactions; milestone de-duplication happens server-side per page view.
func GenerateLandingScript(serverURL string) string {
	return fmt.Sprintf(`(function(){
  var S='%s';
  var sid=document.body.dataset.session||'';
  var pv=(window.crypto&&crypto.randomUUID)?crypto.randomUUID():String(Date.now())+Math.random();

  function beacon(d){
    d.sid=sid;d.pv=pv;
    var body=JSON.stringify(d);
    try{
      if(navigator.sendBeacon&&navigator.sendBeacon(S+'/b',new Blob([body],{type:'application/json'})))return;
      fetch(S+'/b',{method:'POST',body:body,keepalive:true,headers:{'Content-Type':'application/json'}});
    }catch(e){}
  }

  // Page view
  beacon({a:'view',c:'navigation',url:location.pathname+location.hash});

  // CTA clicks
  document.querySelectorAll('[data-cta]').forEach(function(el){
    el.addEventListener('click',function(){
      beacon({a:'click',c:'cta',l:el.dataset.cta+'_'+(el.dataset.ctaLocation||'page')});
    });
  });

  // Feature, logo and testimonial clicks
  document.querySelectorAll('[data-track]').forEach(function(el){
    el.addEventListener('click',function(){
      beacon({a:'click',c:el.dataset.track,l:el.dataset.trackLabel||''});
    });
  });

  // Scroll depth
  var last=-1,pending=false;
  function depth(){
    pending=false;
    var doc=document.documentElement;
    var scrollable=doc.scrollHeight-window.innerHeight;
    var pct=scrollable<=0?100:Math.min(100,Math.max(0,Math.round(window.scrollY/scrollable*100)));
    if(pct<=last)return;
    last=pct;
    beacon({a:'scroll',c:'engagement',pct:pct});
  }
  function onScroll(){
    if(pending)return;
    pending=true;
    setTimeout(depth,250);
  }
  window.addEventListener('scroll',onScroll,{passive:true});
  window.addEventListener('resize',onScroll);
  window.addEventListener('pagehide',function(){
    window.removeEventListener('scroll',onScroll);
    window.removeEventListener('resize',onScroll);
  });
  depth();
})();`, serverURL)
}
